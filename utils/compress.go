package utils

import (
	"bytes"
	"compress/gzip"
	"io"
)

// CompressText gzips the input text for compact storage in the cache database.
// BoltDB stores raw bytes, so no further encoding is applied.
func CompressText(input string) ([]byte, error) {
	var buf bytes.Buffer
	gw, err := gzip.NewWriterLevel(&buf, gzip.BestCompression)
	if err != nil {
		return nil, err
	}
	if _, err := gw.Write([]byte(input)); err != nil {
		return nil, err
	}
	if err := gw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecompressText reverses CompressText and returns the original string.
func DecompressText(data []byte) (string, error) {
	gr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	defer gr.Close()
	out, err := io.ReadAll(gr)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
