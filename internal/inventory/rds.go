package inventory

import (
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	rdstypes "github.com/aws/aws-sdk-go-v2/service/rds/types"

	"accessmap/internal/domain"
)

// FromRDSInstance normalizes a collected RDS API database record into an
// engine target. The endpoint is assembled as "address:port" and is the only
// address field database targets carry.
func FromRDSInstance(region, accountID string, db rdstypes.DBInstance) domain.Target {
	target := domain.Target{
		Kind:   domain.TargetKindDatabase,
		ID:     aws.ToString(db.DBInstanceIdentifier),
		Name:   aws.ToString(db.DBInstanceIdentifier),
		Engine: db.Engine,
		Status: aws.ToString(db.DBInstanceStatus),
	}
	if region != "" {
		target.Region = &region
	}
	if accountID != "" {
		target.AccountID = &accountID
	}

	if db.Endpoint != nil && db.Endpoint.Address != nil {
		endpoint := aws.ToString(db.Endpoint.Address)
		if db.Endpoint.Port != nil {
			endpoint = fmt.Sprintf("%s:%d", endpoint, *db.Endpoint.Port)
		}
		target.Endpoint = &endpoint
	}

	if db.DBSubnetGroup != nil {
		target.VPCID = emptyToNil(db.DBSubnetGroup.VpcId)
		if len(db.DBSubnetGroup.Subnets) > 0 {
			target.SubnetID = emptyToNil(db.DBSubnetGroup.Subnets[0].SubnetIdentifier)
		}
	}

	if len(db.TagList) > 0 {
		target.Tags = make(map[string]string, len(db.TagList))
		for _, tag := range db.TagList {
			key := aws.ToString(tag.Key)
			if key == "" {
				continue
			}
			target.Tags[key] = aws.ToString(tag.Value)
		}
	}

	if aws.ToString(db.DBInstanceStatus) == "deleting" {
		target.Deleted = true
	}

	return target
}
