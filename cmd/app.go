package main

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awsssm "github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/samber/lo"

	"smart-chatbot/handler"
	"smart-chatbot/internal/config"
	"smart-chatbot/internal/domain"
	"smart-chatbot/internal/integrations/paramstore"
	"smart-chatbot/internal/integrations/wikipedia"
	"smart-chatbot/internal/phrasebook"
	"smart-chatbot/internal/repository"
	"smart-chatbot/internal/usecase"
)

// app wires dependencies from Config. AWS clients are only created when a
// phrase table or parameter prefix is configured, so local runs need no
// credentials.
type app struct {
	cfg    config.Config
	awsCfg *aws.Config
}

func (a *app) awsConfig(ctx context.Context) (aws.Config, error) {
	if a.awsCfg != nil {
		return *a.awsCfg, nil
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return aws.Config{}, fmt.Errorf("load AWS config: %w", err)
	}
	a.awsCfg = &cfg
	return cfg, nil
}

func (a *app) phraseStore(ctx context.Context) (*repository.Client, error) {
	awsCfg, err := a.awsConfig(ctx)
	if err != nil {
		return nil, err
	}
	return repository.New(awsdynamodb.NewFromConfig(awsCfg), a.cfg.PhraseTable)
}

// phraseTable merges the embedded phrases with the stored overlay, if any.
func (a *app) phraseTable(ctx context.Context) (phrasebook.Table, error) {
	defaults, err := phrasebook.Defaults()
	if err != nil {
		return phrasebook.Table{}, err
	}
	if a.cfg.PhraseTable == "" {
		return phrasebook.Build(defaults)
	}

	store, err := a.phraseStore(ctx)
	if err != nil {
		return phrasebook.Table{}, err
	}
	stored, err := store.ListPhrases(ctx)
	if err != nil {
		return phrasebook.Table{}, err
	}
	return phrasebook.Build(defaults, storedEntries(stored))
}

func storedEntries(phrases []domain.Phrase) []phrasebook.Entry {
	return lo.Map(phrases, func(p domain.Phrase, _ int) phrasebook.Entry {
		return phrasebook.Entry{Question: p.Key, Answer: p.Answer}
	})
}

func (a *app) wikipediaClient(ctx context.Context) (*wikipedia.Client, error) {
	opts := []wikipedia.Option{
		wikipedia.WithLanguage(a.cfg.WikipediaLanguage),
		wikipedia.WithUserAgent(a.cfg.UserAgent),
	}
	if a.cfg.WikipediaBaseURL != "" {
		opts = append(opts, wikipedia.WithBaseURL(a.cfg.WikipediaBaseURL))
	}
	if a.cfg.ParamPrefix != "" {
		awsCfg, err := a.awsConfig(ctx)
		if err != nil {
			return nil, err
		}
		params, err := paramstore.New(awsssm.NewFromConfig(awsCfg))
		if err != nil {
			return nil, err
		}
		opts = append(opts, wikipedia.WithParamStore(params, a.cfg.ParamPrefix))
	}
	return wikipedia.NewClient(opts...)
}

func (a *app) chatService(ctx context.Context) (*usecase.ChatService, error) {
	table, err := a.phraseTable(ctx)
	if err != nil {
		return nil, fmt.Errorf("build phrase table: %w", err)
	}
	wiki, err := a.wikipediaClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create wikipedia client: %w", err)
	}
	resolver, err := usecase.NewResolver(table, wiki, a.cfg.LookupTimeout)
	if err != nil {
		return nil, err
	}
	return usecase.NewChatService(resolver, a.cfg.MaxMessageLength)
}

func (a *app) handler(ctx context.Context) (*handler.Handler, error) {
	svc, err := a.chatService(ctx)
	if err != nil {
		return nil, err
	}
	return handler.NewHandler(svc)
}
