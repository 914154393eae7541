package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/require"

	"smart-chatbot/internal/domain"
)

type fakeDynamo struct {
	queryOuts    []*dynamodb.QueryOutput
	queryErr     error
	putErr       error
	queryInputs  []*dynamodb.QueryInput
	lastPutInput *dynamodb.PutItemInput
}

func (f *fakeDynamo) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.lastPutInput = in
	return &dynamodb.PutItemOutput{}, f.putErr
}

func (f *fakeDynamo) Query(_ context.Context, in *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	f.queryInputs = append(f.queryInputs, in)
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	idx := len(f.queryInputs) - 1
	if idx >= len(f.queryOuts) {
		return &dynamodb.QueryOutput{}, nil
	}
	return f.queryOuts[idx], nil
}

func makeItem(question, answer string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK":       &types.AttributeValueMemberS{Value: pkPhrasebook},
		"SK":       &types.AttributeValueMemberS{Value: phraseSK(question)},
		"question": &types.AttributeValueMemberS{Value: question},
		"answer":   &types.AttributeValueMemberS{Value: answer},
	}
}

func mustNewClient(t *testing.T, db *fakeDynamo) *Client {
	t.Helper()
	c, err := New(db, "test-table")
	require.NoError(t, err)
	return c
}

func TestListPhrases_HappyPath(t *testing.T) {
	db := &fakeDynamo{queryOuts: []*dynamodb.QueryOutput{
		{Items: []map[string]types.AttributeValue{makeItem("what is go", "A language.")}},
	}}
	c := mustNewClient(t, db)

	phrases, err := c.ListPhrases(context.Background())
	require.NoError(t, err)
	require.Equal(t, []domain.Phrase{{PK: "PHRASEBOOK", SK: "PHRASE#what is go", Key: "what is go", Answer: "A language."}}, phrases)
}

func TestListPhrases_KeyConditionExpression(t *testing.T) {
	db := &fakeDynamo{}
	c := mustNewClient(t, db)

	phrases, err := c.ListPhrases(context.Background())
	require.NoError(t, err)
	require.Empty(t, phrases)
	require.Len(t, db.queryInputs, 1)
	in := db.queryInputs[0]
	require.Equal(t, "PK = :pk AND begins_with(SK, :prefix)", *in.KeyConditionExpression)
	require.Equal(t, "test-table", *in.TableName)
	require.Equal(t, pkPhrasebook, in.ExpressionAttributeValues[":pk"].(*types.AttributeValueMemberS).Value)
}

func TestListPhrases_FollowsPagination(t *testing.T) {
	lastKey := map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: pkPhrasebook},
		"SK": &types.AttributeValueMemberS{Value: phraseSK("a")},
	}
	db := &fakeDynamo{queryOuts: []*dynamodb.QueryOutput{
		{Items: []map[string]types.AttributeValue{makeItem("a", "1")}, LastEvaluatedKey: lastKey},
		{Items: []map[string]types.AttributeValue{makeItem("b", "2")}},
	}}
	c := mustNewClient(t, db)

	phrases, err := c.ListPhrases(context.Background())
	require.NoError(t, err)
	require.Len(t, phrases, 2)
	require.Len(t, db.queryInputs, 2)
	require.Nil(t, db.queryInputs[0].ExclusiveStartKey)
	require.Equal(t, lastKey, db.queryInputs[1].ExclusiveStartKey)
}

func TestListPhrases_QueryError(t *testing.T) {
	db := &fakeDynamo{queryErr: errors.New("ResourceNotFoundException")}
	c := mustNewClient(t, db)

	_, err := c.ListPhrases(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "ListPhrases")
}

func TestListPhrases_MalformedItem_MissingAnswer(t *testing.T) {
	item := map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: pkPhrasebook},
		"SK": &types.AttributeValueMemberS{Value: "PHRASE#x"},
	}
	db := &fakeDynamo{queryOuts: []*dynamodb.QueryOutput{{Items: []map[string]types.AttributeValue{item}}}}
	c := mustNewClient(t, db)

	_, err := c.ListPhrases(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "answer")
}

func TestListPhrases_QuestionFallsBackToSortKey(t *testing.T) {
	item := map[string]types.AttributeValue{
		"PK":     &types.AttributeValueMemberS{Value: pkPhrasebook},
		"SK":     &types.AttributeValueMemberS{Value: "PHRASE#what is rust"},
		"answer": &types.AttributeValueMemberS{Value: "A language."},
	}
	db := &fakeDynamo{queryOuts: []*dynamodb.QueryOutput{{Items: []map[string]types.AttributeValue{item}}}}
	c := mustNewClient(t, db)

	phrases, err := c.ListPhrases(context.Background())
	require.NoError(t, err)
	require.Equal(t, "what is rust", phrases[0].Key)
}

func TestPutPhrase_HappyPath(t *testing.T) {
	db := &fakeDynamo{}
	c := mustNewClient(t, db)

	created, err := c.PutPhrase(context.Background(), NewPhrase("What is Go?", "A language."))
	require.NoError(t, err)
	require.True(t, created)
	require.Equal(t, "attribute_not_exists(PK) AND attribute_not_exists(SK)", *db.lastPutInput.ConditionExpression)
	require.Equal(t, "what is go?", db.lastPutInput.Item["question"].(*types.AttributeValueMemberS).Value)
}

func TestPutPhrase_ExistingEntryIsKept(t *testing.T) {
	db := &fakeDynamo{putErr: fmt.Errorf("operation error DynamoDB: PutItem: %w", &types.ConditionalCheckFailedException{})}
	c := mustNewClient(t, db)

	created, err := c.PutPhrase(context.Background(), NewPhrase("what is go", "A language."))
	require.NoError(t, err)
	require.False(t, created)
}

func TestPutPhrase_DynamoError(t *testing.T) {
	db := &fakeDynamo{putErr: errors.New("ProvisionedThroughputExceededException")}
	c := mustNewClient(t, db)

	_, err := c.PutPhrase(context.Background(), NewPhrase("what is go", "A language."))
	require.Error(t, err)
	require.Contains(t, err.Error(), "PutPhrase")
}

func TestPutPhrase_MissingKeys(t *testing.T) {
	c := mustNewClient(t, &fakeDynamo{})

	_, err := c.PutPhrase(context.Background(), domain.Phrase{SK: "PHRASE#x"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "required")

	_, err = c.PutPhrase(context.Background(), NewPhrase("  ", "answer"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "question and answer")
}

func TestNewPhrase_Fields(t *testing.T) {
	p := NewPhrase("  What Is AI ", " Machines that think. ")
	require.Equal(t, "PHRASEBOOK", p.PK)
	require.Equal(t, "PHRASE#what is ai", p.SK)
	require.Equal(t, "what is ai", p.Key)
	require.Equal(t, "Machines that think.", p.Answer)
}

func TestNew_NilAPI(t *testing.T) {
	_, err := New(nil, "test-table")
	require.Error(t, err)
	require.Contains(t, err.Error(), "must not be nil")
}

func TestNew_EmptyTableName(t *testing.T) {
	_, err := New(&fakeDynamo{}, " ")
	require.Error(t, err)
	require.Contains(t, err.Error(), "must not be empty")
}
