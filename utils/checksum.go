package utils

import (
	"bufio"
	"errors"

	//#nosec G505 -- sha1 is only reported next to sha256 in the archive BOM.
	"crypto/sha1"
	"fmt"
	"hash"
	"io"
	"os"

	"github.com/minio/sha256-simd"
)

type Algorithm int

const (
	SHA1 Algorithm = iota
	SHA256
)

var algorithmFunc = map[Algorithm]func() hash.Hash{
	// Go native crypto algorithms:
	SHA1: sha1.New,
	// sha256-simd algorithm:
	SHA256: sha256.New,
}

// FileDetails describes a produced archive: its size and hex encoded checksums.
type FileDetails struct {
	Size   int64
	Sha1   string
	Sha256 string
}

func GetFileDetails(filePath string) (details *FileDetails, err error) {
	info, err := os.Stat(filePath)
	if err != nil {
		return
	}
	checksums, err := GetFileChecksums(filePath, SHA1, SHA256)
	if err != nil {
		return
	}
	return &FileDetails{Size: info.Size(), Sha1: checksums[SHA1], Sha256: checksums[SHA256]}, nil
}

func GetFileChecksums(filePath string, checksumType ...Algorithm) (checksums map[Algorithm]string, err error) {
	file, err := os.Open(filePath)
	if err != nil {
		return
	}
	defer func() {
		err = errors.Join(err, file.Close())
	}()
	return CalcChecksums(file, checksumType...)
}

// CalcChecksums calculates all hashes at once using AsyncMultiWriter. The file is therefore read only once.
func CalcChecksums(reader io.Reader, checksumType ...Algorithm) (map[Algorithm]string, error) {
	hashes := getChecksumByAlgorithm(checksumType...)
	pageSize := os.Getpagesize()
	sizedReader := bufio.NewReaderSize(reader, pageSize)
	var hashWriter []io.Writer
	for _, v := range hashes {
		hashWriter = append(hashWriter, v)
	}
	if _, err := io.Copy(AsyncMultiWriter(hashWriter...), sizedReader); err != nil {
		return nil, err
	}
	results := map[Algorithm]string{}
	for k, v := range hashes {
		results[k] = fmt.Sprintf("%x", v.Sum(nil))
	}
	return results, nil
}

func getChecksumByAlgorithm(checksumType ...Algorithm) map[Algorithm]hash.Hash {
	hashes := map[Algorithm]hash.Hash{}
	if len(checksumType) == 0 {
		for k, v := range algorithmFunc {
			hashes[k] = v()
		}
		return hashes
	}

	for _, v := range checksumType {
		hashes[v] = algorithmFunc[v]()
	}
	return hashes
}
