package minioclient

import "time"

type Option func(c *MinioClient)

func ConnAttempts(attempts int) Option {
	return func(c *MinioClient) {
		c.connAttempts = attempts
	}
}

func ConnTimeout(timeout time.Duration) Option {
	return func(c *MinioClient) {
		c.connTimeout = timeout
	}
}

func UseSSL(use bool) Option {
	return func(c *MinioClient) {
		c.useSSL = use
	}
}

func CreateBucket(create bool) Option {
	return func(c *MinioClient) {
		c.createBucket = create
	}
}
