package main

import (
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"

	"github.com/ryands17/cloud-resume/internal/vps"
)

func main() {
	pulumi.Run(vps.Program())
}
