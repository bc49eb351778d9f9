package cli

import (
	_ "embed"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
	"github.com/xeipuuv/gojsonschema"

	"github.com/jfrog/workspace-packager/entities"
	"github.com/jfrog/workspace-packager/utils"
)

// Loaded from the working directory when --config isn't set.
const defaultConfigFile = "workspace-packager.toml"

//go:embed config.schema.json
var configSchema string

// fileConfig is the content of the configuration file. Command line flags override its values.
// The token is never read from the file.
type fileConfig struct {
	entities.BuildRequest
	Repo         string `toml:"repo"`
	GitHubAPIURL string `toml:"github-api-url"`
	Registry     string `toml:"registry"`
}

func defaultFileConfig() *fileConfig {
	return &fileConfig{
		BuildRequest: entities.BuildRequest{
			Ref:                entities.DefaultRef,
			Excludes:           append([]string(nil), entities.DefaultExcludes...),
			ArtifactName:       entities.DefaultArtifactName,
			PatchPublishConfig: true,
		},
		Registry: entities.DefaultRegistryURL,
	}
}

// loadConfig returns the defaults overridden by the configuration file, if any.
// An explicitly requested file must exist; the default file is optional.
func loadConfig(path string, log utils.Log) (*fileConfig, error) {
	config := defaultFileConfig()
	if path == "" {
		exists, err := utils.IsFileExists(defaultConfigFile, true)
		if err != nil || !exists {
			return config, err
		}
		path = defaultConfigFile
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "couldn't read the configuration file")
	}
	if err = validateConfig(path, string(content)); err != nil {
		return nil, err
	}
	if _, err = toml.Decode(string(content), config); err != nil {
		return nil, errors.Wrapf(err, "failed decoding '%s'", path)
	}
	log.Debug("Loaded the configuration from", path)
	return config, nil
}

// validateConfig checks the file's keys and value types against the embedded schema.
func validateConfig(path, content string) error {
	var raw map[string]interface{}
	if _, err := toml.Decode(content, &raw); err != nil {
		return errors.Wrapf(err, "failed parsing '%s'", path)
	}
	result, err := gojsonschema.Validate(gojsonschema.NewStringLoader(configSchema), gojsonschema.NewGoLoader(raw))
	if err != nil {
		return err
	}
	if result.Valid() {
		return nil
	}
	var problems []string
	for _, resultErr := range result.Errors() {
		problems = append(problems, resultErr.String())
	}
	return entities.NewConfigError(path, "doesn't match the expected format: "+strings.Join(problems, "; "))
}
