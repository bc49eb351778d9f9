package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/jfrog/workspace-packager/build"
	"github.com/jfrog/workspace-packager/compare"
	"github.com/jfrog/workspace-packager/entities"
	"github.com/jfrog/workspace-packager/publish"
	"github.com/jfrog/workspace-packager/utils"
	clitool "github.com/urfave/cli/v2"
)

const (
	configFlag               = "config"
	checkoutDirFlag          = "checkout-dir"
	refFlag                  = "ref"
	outputDirFlag            = "output-dir"
	packageFlag              = "package"
	excludeFlag              = "exclude"
	sourceRepoFlag           = "source-repo"
	scopeFlag                = "scope"
	skipInstallFlag          = "skip-install"
	cleanFlag                = "clean"
	noPatchPublishConfigFlag = "no-patch-publish-config"
	ciArtifactFlag           = "ci-artifact"
	artifactNameFlag         = "artifact-name"
	sbomFlag                 = "sbom"
	versionFlag              = "version"
	repoFlag                 = "repo"
	tokenFlag                = "token"
	tagFlag                  = "tag"
	githubApiUrlFlag         = "github-api-url"
	registryFlag             = "registry"

	// Set by GitHub Actions to the repository running the workflow.
	githubRepositoryEnv = "GITHUB_REPOSITORY"
)

func GetCommands(logger utils.Log) []*clitool.Command {
	return []*clitool.Command{
		{
			Name:      "build",
			Usage:     "Build the scope's workspaces and pack them into archives",
			UsageText: "workspace-packager build --source-repo <url> --scope <@scope> --checkout-dir <dir> --output-dir <dir>",
			Flags:     buildFlags(),
			Action: func(context *clitool.Context) error {
				request, _, err := newBuildRequest(context, logger)
				if err != nil {
					return err
				}
				if err = request.Validate(); err != nil {
					return err
				}
				result, err := runPipeline(request, logger)
				if err != nil {
					return err
				}
				if request.CIArtifact {
					return publish.NewArtifactUploader(nil, logger).Upload(context.Context, request.ArtifactName, result.Paths())
				}
				return nil
			},
		},
		{
			Name:      "release",
			Usage:     "Build and pack the workspaces, then attach the archives to a release of the artifacts repository",
			UsageText: "workspace-packager release --version <version> --repo <owner/name> [build options]",
			Flags:     releaseFlags(),
			Action: func(context *clitool.Context) error {
				request, apiURL, err := newReleaseRequest(context, logger)
				if err != nil {
					return err
				}
				if err = request.Validate(); err != nil {
					return err
				}
				client, err := publish.NewGitHubReleaseClient(request.Token, apiURL)
				if err != nil {
					return err
				}
				result, err := runPipeline(&request.Build, logger)
				if err != nil {
					return err
				}
				return publish.NewReleasePublisher(client, logger).Publish(context.Context, request.Target(), result.Paths())
			},
		},
		{
			Name:      "compare",
			Usage:     "Build one package and compare it with the tarball published to the registry",
			UsageText: "workspace-packager compare --version <version> --package <name> [options]",
			Flags:     compareFlags(),
			Action: func(context *clitool.Context) error {
				request, err := newCompareRequest(context, logger)
				if err != nil {
					return err
				}
				if err = request.Validate(); err != nil {
					return err
				}
				pipeline, err := build.NewDefaultPipeline(&request.Build, logger)
				if err != nil {
					return err
				}
				registry := compare.NewRegistryClient(request.RegistryURL, nil)
				return compare.NewComparator(pipeline, registry, logger).Compare(context.Context, request)
			},
		},
	}
}

func runPipeline(request *entities.BuildRequest, logger utils.Log) (*entities.ArchiveResult, error) {
	pipeline, err := build.NewDefaultPipeline(request, logger)
	if err != nil {
		return nil, err
	}
	result, err := pipeline.Run()
	if err != nil {
		return nil, err
	}
	for _, file := range result.Files {
		logger.Output(file.Path)
	}
	return result, nil
}

func sourceFlags() []clitool.Flag {
	return []clitool.Flag{
		&clitool.StringFlag{
			Name:  configFlag,
			Usage: fmt.Sprintf("[Optional] Path to a TOML configuration file. Flags override its values. Defaults to '%s' when it exists.` `", defaultConfigFile),
		},
		&clitool.StringFlag{
			Name:  checkoutDirFlag,
			Usage: "[Mandatory] Directory of the source repository's working copy. Created or reused.` `",
		},
		&clitool.StringFlag{
			Name:  outputDirFlag,
			Usage: "[Mandatory] Directory the archives are written to. Must be outside the checkout directory.` `",
		},
		&clitool.StringFlag{
			Name:  sourceRepoFlag,
			Usage: "[Mandatory] URL of the source monorepo.` `",
		},
		&clitool.StringFlag{
			Name:  scopeFlag,
			Usage: "[Mandatory] Scope of the workspaces to pack, for example '@acme'.` `",
		},
		&clitool.BoolFlag{
			Name:  skipInstallFlag,
			Usage: "[Default: false] Set to skip 'yarn install'.` `",
		},
	}
}

func buildFlags() []clitool.Flag {
	return append(sourceFlags(),
		&clitool.StringFlag{
			Name:  refFlag,
			Usage: fmt.Sprintf("[Default: %s] Git reference to build: a branch, a tag or a commit.` `", entities.DefaultRef),
		},
		&clitool.StringSliceFlag{
			Name:  packageFlag,
			Usage: "[Optional] Package to pack, scope-relative or fully qualified. Can be repeated. All the scope's workspaces are packed by default.` `",
		},
		&clitool.StringSliceFlag{
			Name:  excludeFlag,
			Usage: fmt.Sprintf("[Default: %s] Workspace to exclude from the build. Can be repeated.` `", strings.Join(entities.DefaultExcludes, ",")),
		},
		&clitool.BoolFlag{
			Name:  cleanFlag,
			Usage: "[Default: false] Set to remove the output directory before packing.` `",
		},
		&clitool.BoolFlag{
			Name:  noPatchPublishConfigFlag,
			Usage: "[Default: false] Set to pack the package.json files as they are, without promoting their publishConfig entry points.` `",
		},
		&clitool.BoolFlag{
			Name:  ciArtifactFlag,
			Usage: "[Default: false] Set to upload the archives as an artifact of the CI job.` `",
		},
		&clitool.StringFlag{
			Name:  artifactNameFlag,
			Usage: fmt.Sprintf("[Default: %s] Name of the CI artifact.` `", entities.DefaultArtifactName),
		},
		&clitool.BoolFlag{
			Name:  sbomFlag,
			Usage: fmt.Sprintf("[Default: false] Set to write a CycloneDX BOM of the archives to '%s'.` `", entities.SbomFileName),
		},
	)
}

func releaseFlags() []clitool.Flag {
	return append(buildFlags(),
		&clitool.StringFlag{
			Name:  versionFlag,
			Usage: "[Mandatory] Version to release.` `",
		},
		&clitool.StringFlag{
			Name:  repoFlag,
			Usage: "[Mandatory] Repository the release belongs to, as 'owner/name'. Falls back to $GITHUB_REPOSITORY when neither the flag nor the configuration file sets it.` `",
		},
		&clitool.StringFlag{
			Name:    tokenFlag,
			Usage:   "[Mandatory] Token allowed to manage the repository's releases.` `",
			EnvVars: []string{"GITHUB_TOKEN"},
		},
		&clitool.StringFlag{
			Name:  tagFlag,
			Usage: "[Optional] Tag of the release. Defaults to the version.` `",
		},
		&clitool.StringFlag{
			Name:  githubApiUrlFlag,
			Usage: "[Optional] Base URL of a GitHub Enterprise Server. github.com is used by default.` `",
		},
	)
}

func compareFlags() []clitool.Flag {
	return append(sourceFlags(),
		&clitool.StringFlag{
			Name:  versionFlag,
			Usage: "[Mandatory] Published version to compare with.` `",
		},
		&clitool.StringFlag{
			Name:  refFlag,
			Usage: "[Optional] Git reference to build. Defaults to the version.` `",
		},
		&clitool.StringFlag{
			Name:  packageFlag,
			Usage: "[Mandatory] Package to compare, scope-relative or fully qualified.` `",
		},
		&clitool.StringFlag{
			Name:  registryFlag,
			Usage: fmt.Sprintf("[Default: %s] URL of the npm registry.` `", entities.DefaultRegistryURL),
		},
	)
}

// newBuildRequest merges the configuration file and the flags set on the command line.
func newBuildRequest(context *clitool.Context, logger utils.Log) (*entities.BuildRequest, *fileConfig, error) {
	config, err := loadConfig(context.String(configFlag), logger)
	if err != nil {
		return nil, nil, err
	}
	request := config.BuildRequest
	overrideString(context, checkoutDirFlag, &request.CheckoutDir)
	overrideString(context, outputDirFlag, &request.OutputDir)
	overrideString(context, sourceRepoFlag, &request.SourceRepo)
	overrideString(context, scopeFlag, &request.Scope)
	overrideString(context, refFlag, &request.Ref)
	overrideString(context, artifactNameFlag, &request.ArtifactName)
	overrideBool(context, skipInstallFlag, &request.SkipInstall)
	overrideBool(context, cleanFlag, &request.Clean)
	overrideBool(context, ciArtifactFlag, &request.CIArtifact)
	overrideBool(context, sbomFlag, &request.SBOM)
	if context.IsSet(noPatchPublishConfigFlag) {
		request.PatchPublishConfig = !context.Bool(noPatchPublishConfigFlag)
	}
	if context.IsSet(excludeFlag) {
		request.Excludes = context.StringSlice(excludeFlag)
	}
	if context.IsSet(packageFlag) {
		request.Packages = context.StringSlice(packageFlag)
	}
	return &request, config, nil
}

func newReleaseRequest(context *clitool.Context, logger utils.Log) (*entities.ReleaseRequest, string, error) {
	buildRequest, config, err := newBuildRequest(context, logger)
	if err != nil {
		return nil, "", err
	}
	request := &entities.ReleaseRequest{
		Build:      *buildRequest,
		Version:    context.String(versionFlag),
		Tag:        context.String(tagFlag),
		Repository: config.Repo,
		Token:      context.String(tokenFlag),
	}
	overrideString(context, repoFlag, &request.Repository)
	if request.Repository == "" {
		request.Repository = os.Getenv(githubRepositoryEnv)
	}
	apiURL := config.GitHubAPIURL
	overrideString(context, githubApiUrlFlag, &apiURL)
	return request, apiURL, nil
}

func newCompareRequest(context *clitool.Context, logger utils.Log) (*entities.CompareRequest, error) {
	config, err := loadConfig(context.String(configFlag), logger)
	if err != nil {
		return nil, err
	}
	request := &entities.CompareRequest{
		Build:       config.BuildRequest,
		Version:     context.String(versionFlag),
		Package:     context.String(packageFlag),
		RegistryURL: config.Registry,
	}
	// The version is built unless a reference is given on the command line.
	request.Build.Ref = context.String(refFlag)
	overrideString(context, checkoutDirFlag, &request.Build.CheckoutDir)
	overrideString(context, outputDirFlag, &request.Build.OutputDir)
	overrideString(context, sourceRepoFlag, &request.Build.SourceRepo)
	overrideString(context, scopeFlag, &request.Build.Scope)
	overrideBool(context, skipInstallFlag, &request.Build.SkipInstall)
	overrideString(context, registryFlag, &request.RegistryURL)
	return request, nil
}

func overrideString(context *clitool.Context, flag string, value *string) {
	if context.IsSet(flag) {
		*value = context.String(flag)
	}
}

func overrideBool(context *clitool.Context, flag string, value *bool) {
	if context.IsSet(flag) {
		*value = context.Bool(flag)
	}
}
