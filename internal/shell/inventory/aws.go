package inventory

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"

	coreinventory "github.com/stackpact/stackpact/internal/core/inventory"
	"github.com/stackpact/stackpact/internal/core/ingress"
)

// AWSProvider implements Provider for AWS EC2. Instances are discovered by
// the stack ownership tag.
type AWSProvider struct {
	region string
	client *ec2.Client
	logger *slog.Logger
}

// NewAWSProvider creates a new EC2 inventory provider.
func NewAWSProvider(region, accessKeyID, secretAccessKey string, logger *slog.Logger) *AWSProvider {
	return &AWSProvider{
		region: region,
		client: ec2.New(ec2.Options{
			Region:      region,
			Credentials: credentials.NewStaticCredentialsProvider(accessKeyID, secretAccessKey, ""),
		}),
		logger: logger.With("provider", "aws"),
	}
}

// Snapshot lists running EC2 instances tagged with the stack.
func (p *AWSProvider) Snapshot(ctx context.Context, stack string) (*coreinventory.Snapshot, error) {
	out, err := p.client.DescribeInstances(ctx, &ec2.DescribeInstancesInput{
		Filters: []ec2types.Filter{
			{Name: aws.String("tag:" + ingress.LabelStack), Values: []string{stack}},
			{Name: aws.String("instance-state-name"), Values: []string{"running"}},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("describe instances in %s: %w", p.region, err)
	}

	snapshot := &coreinventory.Snapshot{Source: "aws"}
	for _, res := range out.Reservations {
		for _, inst := range res.Instances {
			snapshot.Resources = append(snapshot.Resources, instanceResource(inst))
		}
	}

	p.logger.Debug("EC2 snapshot taken", "stack", stack, "resources", len(snapshot.Resources))
	return snapshot, nil
}

func instanceResource(inst ec2types.Instance) coreinventory.Resource {
	labels := make(map[string]string, len(inst.Tags))
	name := aws.ToString(inst.InstanceId)
	for _, tag := range inst.Tags {
		key := aws.ToString(tag.Key)
		labels[key] = aws.ToString(tag.Value)
		if key == "Name" && labels[key] != "" {
			name = labels[key]
		}
	}

	var networks []string
	if vpc := aws.ToString(inst.VpcId); vpc != "" {
		networks = append(networks, vpc)
	}

	return coreinventory.Resource{
		Name:     name,
		Image:    aws.ToString(inst.ImageId),
		Labels:   labels,
		Networks: networks,
	}
}
