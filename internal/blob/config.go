package blob

import "errors"

// S3Config parametrizes the S3 store client. Endpoint is optional and enables
// path-style addressing for MinIO-compatible stores.
type S3Config struct {
	Bucket    string
	Region    string
	AccessKey string
	SecretKey string
	Endpoint  string
	Prefix    string
}

func (c *S3Config) Validate() error {
	if c.Bucket == "" {
		return errors.New("bucket is required")
	}
	if c.AccessKey == "" || c.SecretKey == "" {
		return errors.New("access key and secret key are required")
	}
	if c.Region == "" && c.Endpoint == "" {
		return errors.New("either region or endpoint is required")
	}
	return nil
}
