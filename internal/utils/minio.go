package utils

import (
	"context"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// NewMinioClient builds an object-storage client and makes sure the photo
// bucket exists with a public read-only policy.
func NewMinioClient(endpoint, accessKey, secretKey, bucketName string, useSSL bool) (*minio.Client, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, err
	}

	ctx := context.Background()

	exists, err := client.BucketExists(ctx, bucketName)
	if err != nil {
		return nil, err
	}

	if !exists {
		if err := client.MakeBucket(ctx, bucketName, minio.MakeBucketOptions{}); err != nil {
			return nil, err
		}

		publicPolicy := `{
			"Version": "2012-10-17",
			"Statement": [
				{
					"Action": ["s3:GetObject"],
					"Effect": "Allow",
					"Principal": "*",
					"Resource": "arn:aws:s3:::` + bucketName + `/*"
				}
			]
		}`

		if err := client.SetBucketPolicy(ctx, bucketName, publicPolicy); err != nil {
			return nil, err
		}
	}

	return client, nil
}
