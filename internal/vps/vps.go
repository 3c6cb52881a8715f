// Package vps provisions a Hetzner server running the site container and
// points Cloudflare DNS at it.
package vps

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pulumi/pulumi-cloudflare/sdk/v5/go/cloudflare"
	"github.com/pulumi/pulumi-docker/sdk/v4/go/docker"
	"github.com/pulumi/pulumi-hcloud/sdk/go/hcloud"
	"github.com/pulumi/pulumi-tls/sdk/v5/go/tls"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"
)

// NetworkName is the docker network the app container joins.
const NetworkName = "app_network_public"

// OpenPorts are reachable from anywhere through the server firewall.
var OpenPorts = []string{"22", "80", "443"}

var anywhere = pulumi.StringArray{pulumi.String("0.0.0.0/0"), pulumi.String("::/0")}

// userData installs tailscale on first boot.
var userData = strings.Join([]string{
	"#!/bin/bash",
	"curl -fsSL https://pkgs.tailscale.com/stable/ubuntu/noble.noarmor.gpg | tee /usr/share/keyrings/tailscale-archive-keyring.gpg >/dev/null",
	"curl -fsSL https://pkgs.tailscale.com/stable/ubuntu/noble.tailscale-keyring.list | tee /etc/apt/sources.list.d/tailscale.list",
	"apt-get install ca-certificates curl",
	"apt-get update",
	"apt-get install -y tailscale",
}, "\n")

// Deployment holds the resources created by Deploy.
type Deployment struct {
	Server    *hcloud.Server
	KeyPath   pulumi.StringOutput
	Container *docker.Container
	Records   []*cloudflare.Record
}

// Program returns the pulumi.RunFunc that loads stack config and deploys.
func Program() pulumi.RunFunc {
	return func(ctx *pulumi.Context) error {
		cfg, err := LoadConfig(ctx)
		if err != nil {
			return err
		}
		_, err = Deploy(ctx, cfg)
		return err
	}
}

// Deploy declares every resource. Ordering between the server, the docker
// resources and the DNS records is left to DependsOn and output dependencies.
func Deploy(ctx *pulumi.Context, cfg Config) (*Deployment, error) {
	sshKeyLocal, err := tls.NewPrivateKey(ctx, "privateKey", &tls.PrivateKeyArgs{
		Algorithm: pulumi.String("ED25519"),
	})
	if err != nil {
		return nil, err
	}

	sshKeyHetzner, err := hcloud.NewSshKey(ctx, "publicKey", &hcloud.SshKeyArgs{
		PublicKey: sshKeyLocal.PublicKeyOpenssh,
	})
	if err != nil {
		return nil, err
	}

	baseImage, err := hcloud.GetImage(ctx, &hcloud.GetImageArgs{
		Name:             pulumi.StringRef("docker-ce"),
		WithArchitecture: pulumi.StringRef("arm"),
		MostRecent:       pulumi.BoolRef(true),
	})
	if err != nil {
		return nil, fmt.Errorf("lookup docker-ce image: %w", err)
	}

	rules := make(hcloud.FirewallRuleArray, 0, len(OpenPorts))
	for _, port := range OpenPorts {
		rules = append(rules, hcloud.FirewallRuleArgs{
			Direction: pulumi.String("in"),
			Protocol:  pulumi.String("tcp"),
			Port:      pulumi.String(port),
			SourceIps: anywhere,
		})
	}
	firewall, err := hcloud.NewFirewall(ctx, "appServerFirewall", &hcloud.FirewallArgs{
		Name:  pulumi.String("appServerFirewall"),
		Rules: rules,
	})
	if err != nil {
		return nil, err
	}

	// Firewall IDs are numeric in the Hetzner API.
	firewallID := firewall.ID().ApplyT(func(id pulumi.ID) (int, error) {
		return strconv.Atoi(string(id))
	}).(pulumi.IntOutput)

	vm, err := hcloud.NewServer(ctx, "appServer", &hcloud.ServerArgs{
		Image:      pulumi.String(strconv.Itoa(baseImage.Id)),
		Name:       pulumi.String(cfg.ServerName),
		ServerType: pulumi.String(cfg.ServerType),
		Location:   pulumi.String(cfg.Location),
		UserData:   pulumi.String(userData),
		PublicNets: hcloud.ServerPublicNetArray{
			hcloud.ServerPublicNetArgs{
				Ipv4Enabled: pulumi.Bool(true),
				Ipv6Enabled: pulumi.Bool(true),
			},
		},
		SshKeys:     pulumi.StringArray{sshKeyHetzner.ID().ToStringOutput()},
		FirewallIds: pulumi.IntArray{firewallID},
	})
	if err != nil {
		return nil, err
	}

	// The docker provider reads the key from disk.
	keyPath := sshKeyLocal.PrivateKeyOpenssh.ApplyT(func(key string) (string, error) {
		if err := os.WriteFile(cfg.KeyPath, []byte(key), 0o600); err != nil {
			return "", fmt.Errorf("write private key: %w", err)
		}
		return filepath.Abs(cfg.KeyPath)
	}).(pulumi.StringOutput)

	dockerServer, err := docker.NewProvider(ctx, "dockerServer", &docker.ProviderArgs{
		Host: pulumi.Sprintf("ssh://root@%s", vm.Ipv4Address),
		SshOpts: pulumi.StringArray{
			pulumi.String("-i"),
			keyPath,
			pulumi.String("-o"),
			pulumi.String("StrictHostKeyChecking=no"),
			pulumi.String("-p"),
			pulumi.String("22"),
		},
	})
	if err != nil {
		return nil, err
	}

	onServer := []pulumi.ResourceOption{
		pulumi.Provider(dockerServer),
		pulumi.DependsOn([]pulumi.Resource{vm}),
	}

	network, err := docker.NewNetwork(ctx, "publicDockerNetwork", &docker.NetworkArgs{
		Name: pulumi.String(NetworkName),
	}, onServer...)
	if err != nil {
		return nil, err
	}

	appImage, err := docker.NewImage(ctx, "appImage", &docker.ImageArgs{
		ImageName: pulumi.String(cfg.ImageName()),
		Build: &docker.DockerBuildArgs{
			Context:    pulumi.String(cfg.BuildContext),
			Dockerfile: pulumi.String(cfg.Dockerfile),
			Platform:   pulumi.String(cfg.Platform),
		},
		SkipPush: pulumi.Bool(true),
	}, onServer...)
	if err != nil {
		return nil, err
	}

	container, err := docker.NewContainer(ctx, "cloudResume", &docker.ContainerArgs{
		Name:  pulumi.String("cloud-resume"),
		Image: appImage.ImageName,
		Ports: docker.ContainerPortArray{
			docker.ContainerPortArgs{Internal: pulumi.Int(80), External: pulumi.Int(80)},
			docker.ContainerPortArgs{Internal: pulumi.Int(443), External: pulumi.Int(443)},
		},
		NetworksAdvanced: docker.ContainerNetworksAdvancedArray{
			docker.ContainerNetworksAdvancedArgs{Name: network.ID().ToStringOutput()},
		},
		Restart: pulumi.String("always"),
	}, pulumi.Provider(dockerServer), pulumi.DependsOn([]pulumi.Resource{appImage}))
	if err != nil {
		return nil, err
	}

	zone, err := cloudflare.LookupZone(ctx, &cloudflare.LookupZoneArgs{
		Name: pulumi.StringRef(cfg.Domain),
	})
	if err != nil {
		return nil, fmt.Errorf("lookup zone %s: %w", cfg.Domain, err)
	}

	var records []*cloudflare.Record
	for _, r := range []struct{ name, host string }{
		{"rootARecord", cfg.Domain},
		{"rootWwwRecord", "www." + cfg.Domain},
	} {
		record, err := cloudflare.NewRecord(ctx, r.name, &cloudflare.RecordArgs{
			ZoneId:  pulumi.String(zone.Id),
			Name:    pulumi.String(r.host),
			Type:    pulumi.String("A"),
			Content: vm.Ipv4Address,
			Proxied: pulumi.Bool(true),
		}, pulumi.DependsOn([]pulumi.Resource{vm}))
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	ctx.Export("website", pulumi.String("https://"+cfg.Domain))
	ctx.Export("serverIpv4", vm.Ipv4Address)
	ctx.Export("image", appImage.ImageName)

	return &Deployment{
		Server:    vm,
		KeyPath:   keyPath,
		Container: container,
		Records:   records,
	}, nil
}
