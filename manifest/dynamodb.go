package manifest

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/hupe1980/segdb/blobstore"
	"github.com/hupe1980/segdb/codec"
)

// ErrConcurrentCommit is returned by DynamoStore.Save when another writer's
// commit claimed the next version first.
var ErrConcurrentCommit = errors.New("manifest: concurrent commit detected")

// DDBClient is the subset of *dynamodb.Client DynamoStore depends on, so
// tests can substitute a fake.
type DDBClient interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

// DynamoStore publishes values of type T the same way Store does — content
// goes to a blob-store key — but guards the "which key is current" pointer
// with a DynamoDB conditional write instead of a plain blob overwrite. A
// plain blob store key has no compare-and-swap: two writers racing to call
// Store.Save both succeed, and whichever Set lands last silently wins. A
// DynamoDB item keyed by (partition, monotonically increasing version) with
// a ConditionExpression of attribute_not_exists(version) rejects the loser
// instead, so concurrent committers can detect and retry.
//
// Table schema: partition key "partition_key" (string), sort key "version"
// (number). Each item's "blobKey" attribute names the blob-store key
// holding that version's content.
type DynamoStore[T any] struct {
	store blobstore.Store
	codec codec.Codec
	ddb   DDBClient

	table     string
	partition string
	keyPrefix string

	mu      sync.Mutex
	current T
	has     bool
}

// NewDynamoStore creates a DynamoStore publishing snapshot content under
// blob-store keys prefixed with keyPrefix, with its CURRENT pointer
// guarded by DynamoDB table, partitioned by partition. A nil codec falls
// back to codec.Default.
func NewDynamoStore[T any](store blobstore.Store, c codec.Codec, ddb DDBClient, table, partition, keyPrefix string) *DynamoStore[T] {
	if c == nil {
		c = codec.Default
	}
	return &DynamoStore[T]{store: store, codec: c, ddb: ddb, table: table, partition: partition, keyPrefix: keyPrefix}
}

func (s *DynamoStore[T]) latestVersion(ctx context.Context) (version uint64, blobKey string, err error) {
	out, err := s.ddb.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(s.table),
		KeyConditionExpression: aws.String("partition_key = :p"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":p": &types.AttributeValueMemberS{Value: s.partition},
		},
		ScanIndexForward: aws.Bool(false),
		Limit:            aws.Int32(1),
	})
	if err != nil {
		return 0, "", fmt.Errorf("manifest: query latest version: %w", err)
	}
	if len(out.Items) == 0 {
		return 0, "", nil
	}

	item := out.Items[0]
	versionAttr, ok := item["version"].(*types.AttributeValueMemberN)
	if !ok {
		return 0, "", errors.New("manifest: item missing numeric version attribute")
	}
	keyAttr, ok := item["blobKey"].(*types.AttributeValueMemberS)
	if !ok {
		return 0, "", errors.New("manifest: item missing blobKey attribute")
	}
	if _, err := fmt.Sscanf(versionAttr.Value, "%d", &version); err != nil {
		return 0, "", fmt.Errorf("manifest: parse version: %w", err)
	}
	return version, keyAttr.Value, nil
}

// Load fetches the latest committed version's content and adopts it as
// Current. ok is false if nothing has ever been committed.
func (s *DynamoStore[T]) Load(ctx context.Context) (v T, ok bool, err error) {
	_, blobKey, err := s.latestVersion(ctx)
	if err != nil {
		return v, false, err
	}
	if blobKey == "" {
		return v, false, nil
	}

	raw, found, err := s.store.Get(ctx, blobKey)
	if err != nil {
		return v, false, fmt.Errorf("manifest: load %q: %w", blobKey, err)
	}
	if !found {
		return v, false, nil
	}
	if err := s.codec.Unmarshal(raw, &v); err != nil {
		return v, false, fmt.Errorf("manifest: load %q: %w", blobKey, err)
	}

	s.mu.Lock()
	s.current, s.has = v, true
	s.mu.Unlock()
	return v, true, nil
}

// Save writes v under a new versioned blob key, then commits that version
// as CURRENT via a DynamoDB conditional write. If another writer has
// already committed that version, Save returns ErrConcurrentCommit without
// disturbing Current's last-reported value — the orphaned blob it wrote is
// harmless and never referenced by any item.
func (s *DynamoStore[T]) Save(ctx context.Context, v T) error {
	raw, err := s.codec.Marshal(v)
	if err != nil {
		return fmt.Errorf("manifest: save: %w", err)
	}

	version, _, err := s.latestVersion(ctx)
	if err != nil {
		return err
	}
	nextVersion := version + 1
	blobKey := fmt.Sprintf("%s/v%d", s.keyPrefix, nextVersion)

	if err := s.store.Set(ctx, blobKey, raw); err != nil {
		return fmt.Errorf("manifest: save %q: %w", blobKey, err)
	}

	_, err = s.ddb.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item: map[string]types.AttributeValue{
			"partition_key": &types.AttributeValueMemberS{Value: s.partition},
			"version":       &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", nextVersion)},
			"blobKey":       &types.AttributeValueMemberS{Value: blobKey},
		},
		ConditionExpression: aws.String("attribute_not_exists(version)"),
	})
	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return ErrConcurrentCommit
		}
		return fmt.Errorf("manifest: commit version %d: %w", nextVersion, err)
	}

	s.mu.Lock()
	s.current, s.has = v, true
	s.mu.Unlock()
	return nil
}

// Current returns the last value this DynamoStore successfully Saved or
// Loaded, and whether one exists yet.
func (s *DynamoStore[T]) Current() (v T, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current, s.has
}
