package blob

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyMappingWithPrefix(t *testing.T) {
	c := NewS3Client(nil, &S3Config{Bucket: "b", Prefix: "vaults/main"})

	assert.Equal(t, "vaults/main/notes/a.md", c.key("notes/a.md"))
	assert.Equal(t, "notes/a.md", c.relPath("vaults/main/notes/a.md"))

	// keys outside the prefix and the prefix placeholder are dropped
	assert.Equal(t, "", c.relPath("other/notes/a.md"))
	assert.Equal(t, "", c.relPath("vaults/main/"))
}

func TestKeyMappingWithoutPrefix(t *testing.T) {
	c := NewS3Client(nil, &S3Config{Bucket: "b"})

	assert.Equal(t, "notes/a.md", c.key("notes/a.md"))
	assert.Equal(t, "notes/a.md", c.relPath("notes/a.md"))
}

func TestKeyMappingTrailingSlashPrefix(t *testing.T) {
	c := NewS3Client(nil, &S3Config{Bucket: "b", Prefix: "vaults/main/"})

	assert.Equal(t, "vaults/main/notes/a.md", c.key("notes/a.md"))
	assert.Equal(t, "notes/a.md", c.relPath("vaults/main/notes/a.md"))
}

func TestS3ConfigValidate(t *testing.T) {
	cases := []struct {
		name    string
		cfg     S3Config
		wantErr bool
	}{
		{"valid with region", S3Config{Bucket: "b", AccessKey: "k", SecretKey: "s", Region: "eu-central-1"}, false},
		{"valid with endpoint", S3Config{Bucket: "b", AccessKey: "k", SecretKey: "s", Endpoint: "http://localhost:9000"}, false},
		{"missing bucket", S3Config{AccessKey: "k", SecretKey: "s", Region: "r"}, true},
		{"missing credentials", S3Config{Bucket: "b", Region: "r"}, true},
		{"missing region and endpoint", S3Config{Bucket: "b", AccessKey: "k", SecretKey: "s"}, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
