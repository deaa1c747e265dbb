package inventory

import (
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"

	"accessmap/internal/domain"
)

// FromEC2Instance normalizes a collected EC2 API instance record into an
// engine target. The collector has already made the API calls; this only
// reshapes its output.
func FromEC2Instance(region, accountID string, inst ec2types.Instance) domain.Target {
	target := domain.Target{
		Kind:  domain.TargetKindCompute,
		ID:    aws.ToString(inst.InstanceId),
		Name:  aws.ToString(inst.InstanceId),
		VPCID: inst.VpcId,
	}
	if inst.State != nil {
		target.Status = string(inst.State.Name)
		if inst.State.Name == ec2types.InstanceStateNameTerminated {
			target.Deleted = true
		}
	}
	if inst.SubnetId != nil {
		target.SubnetID = inst.SubnetId
	}
	if region != "" {
		target.Region = &region
	}
	if accountID != "" {
		target.AccountID = &accountID
	}

	target.PrivateIP = emptyToNil(inst.PrivateIpAddress)
	target.PrivateDNS = emptyToNil(inst.PrivateDnsName)
	target.PublicIP = emptyToNil(inst.PublicIpAddress)
	target.PublicDNS = emptyToNil(inst.PublicDnsName)

	if inst.InstanceType != "" {
		instanceType := string(inst.InstanceType)
		target.InstanceType = &instanceType
	}

	if platform := platformFamily(inst); platform != "" {
		target.Platform = &platform
	}

	if len(inst.Tags) > 0 {
		target.Tags = make(map[string]string, len(inst.Tags))
		for _, tag := range inst.Tags {
			key := aws.ToString(tag.Key)
			if key == "" {
				continue
			}
			target.Tags[key] = aws.ToString(tag.Value)
			if key == "Name" && aws.ToString(tag.Value) != "" {
				target.Name = aws.ToString(tag.Value)
			}
		}
	}

	return target
}

// platformFamily maps the EC2 platform fields to the engine's OS family
// vocabulary. The Platform field is only ever "windows"; everything else is
// inferred from PlatformDetails ("Linux/UNIX", "Red Hat Enterprise Linux",
// "Windows with SQL Server", ...).
func platformFamily(inst ec2types.Instance) string {
	if inst.Platform == ec2types.PlatformValuesWindows {
		return "windows"
	}
	details := strings.ToLower(aws.ToString(inst.PlatformDetails))
	switch {
	case strings.Contains(details, "windows"):
		return "windows"
	case strings.Contains(details, "linux") || strings.Contains(details, "unix"):
		return "linux"
	}
	return ""
}

func emptyToNil(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}
