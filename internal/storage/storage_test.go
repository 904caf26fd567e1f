package storage

import (
	"errors"
	"strings"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"

	"jobboard/internal/config"
)

func TestResumeKey(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		wantExt  string
	}{
		{name: "pdf", filename: "cv.PDF", wantExt: ".pdf"},
		{name: "path is ignored", filename: "../../etc/passwd.docx", wantExt: ".docx"},
		{name: "no extension", filename: "resume", wantExt: ""},
		{name: "absurd extension dropped", filename: "x.aaaaaaaaaaaaaaaa", wantExt: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := ResumeKey("app-1", tt.filename)

			assert.True(t, strings.HasPrefix(key, "resumes/app-1/"), key)
			assert.True(t, strings.HasSuffix(key, tt.wantExt), key)
			assert.NotContains(t, key, "..")
			assert.Len(t, strings.Split(key, "/"), 3)
		})
	}

	assert.NotEqual(t, ResumeKey("a", "cv.pdf"), ResumeKey("a", "cv.pdf"))
}

func TestValidateMinIO(t *testing.T) {
	valid := config.MinIOConfig{Endpoint: "localhost:9000", AccessKey: "ak", SecretKey: "sk", Bucket: "resumes"}
	assert.NoError(t, validateMinIO(valid))

	noEndpoint := valid
	noEndpoint.Endpoint = ""
	assert.ErrorContains(t, validateMinIO(noEndpoint), "endpoint")

	noCreds := valid
	noCreds.SecretKey = ""
	assert.ErrorContains(t, validateMinIO(noCreds), "credentials")

	noBucket := valid
	noBucket.Bucket = ""
	assert.ErrorContains(t, validateMinIO(noBucket), "bucket")

	_, err := NewMinIO(noBucket)
	assert.Error(t, err)
}

func TestMapMinIOError(t *testing.T) {
	missing := minio.ErrorResponse{Code: "NoSuchKey", Message: "The specified key does not exist."}
	assert.ErrorIs(t, mapMinIOError(missing), ErrObjectNotFound)

	other := errors.New("connection refused")
	assert.Equal(t, other, mapMinIOError(other))
}
