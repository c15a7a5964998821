package seed

import (
	"context"
	"fmt"
	"iter"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// DynamoDB yields a string attribute of every item in a table.
type DynamoDB struct {
	Client    dynamodb.ScanAPIClient
	Table     string
	Attribute string
	// PageSize bounds the items evaluated per Scan call. Zero uses the
	// service default.
	PageSize int32
}

// Identifiers implements Source.
func (d *DynamoDB) Identifiers(ctx context.Context) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		input := &dynamodb.ScanInput{
			TableName:                aws.String(d.Table),
			ProjectionExpression:     aws.String("#id"),
			ExpressionAttributeNames: map[string]string{"#id": d.Attribute},
		}
		if d.PageSize > 0 {
			input.Limit = aws.Int32(d.PageSize)
		}

		paginator := dynamodb.NewScanPaginator(d.Client, input)
		for paginator.HasMorePages() {
			page, err := paginator.NextPage(ctx)
			if err != nil {
				yield("", err)
				return
			}
			for _, item := range page.Items {
				av, ok := item[d.Attribute].(*types.AttributeValueMemberS)
				if !ok {
					yield("", fmt.Errorf("dynamodb %s: attribute %q is not a string", d.Table, d.Attribute))
					return
				}
				if !yield(av.Value, nil) {
					return
				}
			}
		}
	}
}
