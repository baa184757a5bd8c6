package lib

import (
	"context"
	"os"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
)

const DefaultRegion = "ap-southeast-2"

var sess *aws.Config
var sessLock sync.Mutex

// Region is AWS_REGION, or DefaultRegion when unset.
func Region() string {
	region := os.Getenv("AWS_REGION")
	if region == "" {
		return DefaultRegion
	}
	return region
}

func Session() *aws.Config {
	sessLock.Lock()
	defer sessLock.Unlock()
	if sess == nil {
		cfg, err := config.LoadDefaultConfig(context.Background(), config.WithRegion(Region()))
		if err != nil {
			panic(err)
		}
		sess = &cfg
	}
	return sess
}

func SessionExplicit(accessKeyID, accessKeySecret, region string) *aws.Config {
	cfg, err := config.LoadDefaultConfig(
		context.Background(),
		config.WithRegion(region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(accessKeyID, accessKeySecret, "")),
	)
	if err != nil {
		panic(err)
	}
	return &cfg
}
