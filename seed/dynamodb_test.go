package seed

import (
	"context"
	"strconv"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/hupe1980/tsvsubset/key"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeScanClient serves items in pages of pageSize using the item index as
// the exclusive start key.
type fakeScanClient struct {
	items    []map[string]types.AttributeValue
	pageSize int
	calls    int
}

func (f *fakeScanClient) Scan(_ context.Context, in *dynamodb.ScanInput, _ ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	f.calls++

	start := 0
	if in.ExclusiveStartKey != nil {
		n, err := strconv.Atoi(in.ExclusiveStartKey["pos"].(*types.AttributeValueMemberN).Value)
		if err != nil {
			return nil, err
		}
		start = n
	}

	end := min(start+f.pageSize, len(f.items))
	out := &dynamodb.ScanOutput{Items: f.items[start:end]}
	if end < len(f.items) {
		out.LastEvaluatedKey = map[string]types.AttributeValue{
			"pos": &types.AttributeValueMemberN{Value: strconv.Itoa(end)},
		}
	}
	return out, nil
}

func item(attr, v string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{attr: &types.AttributeValueMemberS{Value: v}}
}

func TestDynamoDB(t *testing.T) {
	client := &fakeScanClient{
		pageSize: 2,
		items: []map[string]types.AttributeValue{
			item("tconst", "tt0000001"),
			item("tconst", "tt0000002"),
			item("tconst", "tt0000003"),
		},
	}

	src := &DynamoDB{Client: client, Table: "seeds", Attribute: "tconst"}
	set, err := Load[key.Title](context.Background(), src)
	require.NoError(t, err)

	assertMembers(t, set, 1, 2, 3)
	assert.Equal(t, 2, client.calls)
}

func TestDynamoDB_WrongType(t *testing.T) {
	client := &fakeScanClient{
		pageSize: 10,
		items: []map[string]types.AttributeValue{
			{"tconst": &types.AttributeValueMemberN{Value: "1"}},
		},
	}

	src := &DynamoDB{Client: client, Table: "seeds", Attribute: "tconst"}
	_, err := Load[key.Title](context.Background(), src)
	assert.ErrorIs(t, err, ErrSourceUnavailable)
}
