package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"smart-chatbot/internal/domain"
	"smart-chatbot/internal/phrasebook"
)

const (
	pkPhrasebook   = "PHRASEBOOK"
	skPrefixPhrase = "PHRASE#"
)

// dynamodbAPI is the minimal DynamoDB interface required by Client.
// Defined here for testability.
type dynamodbAPI interface {
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, in *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

// Client wraps a DynamoDB table holding phrase-answer entries. All entries
// share one partition so a single Query returns the whole table.
type Client struct {
	api       dynamodbAPI
	tableName string
}

// New creates a new repository Client.
func New(api dynamodbAPI, tableName string) (*Client, error) {
	if api == nil {
		return nil, errors.New("repository: api must not be nil")
	}
	if strings.TrimSpace(tableName) == "" {
		return nil, errors.New("repository: table name must not be empty")
	}
	return &Client{api: api, tableName: tableName}, nil
}

// phraseSK returns the sort key for a normalized question.
func phraseSK(question string) string {
	return skPrefixPhrase + question
}

// NewPhrase constructs a Phrase with keys derived from the normalized question.
func NewPhrase(question, answer string) domain.Phrase {
	key := phrasebook.Normalize(question)
	return domain.Phrase{
		PK:     pkPhrasebook,
		SK:     phraseSK(key),
		Key:    key,
		Answer: strings.TrimSpace(answer),
	}
}

// ListPhrases returns every stored phrase, following pagination.
func (c *Client) ListPhrases(ctx context.Context) ([]domain.Phrase, error) {
	var (
		phrases   []domain.Phrase
		startKey  map[string]types.AttributeValue
		pageCount int
	)
	for {
		out, err := c.api.Query(ctx, &dynamodb.QueryInput{
			TableName:              aws.String(c.tableName),
			KeyConditionExpression: aws.String("PK = :pk AND begins_with(SK, :prefix)"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":pk":     &types.AttributeValueMemberS{Value: pkPhrasebook},
				":prefix": &types.AttributeValueMemberS{Value: skPrefixPhrase},
			},
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, fmt.Errorf("repository: ListPhrases query page %d: %w", pageCount, err)
		}
		pageCount++

		for _, item := range out.Items {
			p, err := itemToPhrase(item)
			if err != nil {
				return nil, fmt.Errorf("repository: ListPhrases unmarshal: %w", err)
			}
			phrases = append(phrases, p)
		}

		if len(out.LastEvaluatedKey) == 0 {
			return phrases, nil
		}
		startKey = out.LastEvaluatedKey
	}
}

// PutPhrase stores p unless an entry with the same key already exists.
// It reports whether the entry was created.
func (c *Client) PutPhrase(ctx context.Context, p domain.Phrase) (bool, error) {
	if p.PK == "" || p.SK == "" {
		return false, errors.New("repository: PutPhrase: PK and SK are required")
	}
	if p.Key == "" || p.Answer == "" {
		return false, errors.New("repository: PutPhrase: question and answer are required")
	}

	_, err := c.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(c.tableName),
		Item:                phraseItem(p),
		ConditionExpression: aws.String("attribute_not_exists(PK) AND attribute_not_exists(SK)"),
	})
	if err != nil {
		var exists *types.ConditionalCheckFailedException
		if errors.As(err, &exists) {
			return false, nil
		}
		return false, fmt.Errorf("repository: PutPhrase: %w", err)
	}
	return true, nil
}

func phraseItem(p domain.Phrase) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK":       &types.AttributeValueMemberS{Value: p.PK},
		"SK":       &types.AttributeValueMemberS{Value: p.SK},
		"question": &types.AttributeValueMemberS{Value: p.Key},
		"answer":   &types.AttributeValueMemberS{Value: p.Answer},
	}
}

// itemToPhrase converts a DynamoDB attribute map to a Phrase.
func itemToPhrase(item map[string]types.AttributeValue) (domain.Phrase, error) {
	pk, err := strAttr(item, "PK")
	if err != nil {
		return domain.Phrase{}, err
	}
	sk, err := strAttr(item, "SK")
	if err != nil {
		return domain.Phrase{}, err
	}
	answer, err := strAttr(item, "answer")
	if err != nil {
		return domain.Phrase{}, err
	}
	question, err := strAttr(item, "question")
	if err != nil {
		// The sort key carries the question too.
		question = strings.TrimPrefix(sk, skPrefixPhrase)
	}

	return domain.Phrase{
		PK:     pk,
		SK:     sk,
		Key:    question,
		Answer: answer,
	}, nil
}

func strAttr(item map[string]types.AttributeValue, key string) (string, error) {
	v, ok := item[key]
	if !ok {
		return "", fmt.Errorf("repository: missing attribute %q", key)
	}
	s, ok := v.(*types.AttributeValueMemberS)
	if !ok {
		return "", fmt.Errorf("repository: attribute %q is not a string", key)
	}
	return s.Value, nil
}
