package pipeline

import (
	"context"

	"github.com/hazyhaar/whiteout-ext/internal/alias"
	"github.com/hazyhaar/whiteout-ext/internal/assemble"
	"github.com/hazyhaar/whiteout-ext/internal/classify"
	"github.com/hazyhaar/whiteout-ext/internal/detect"
	"github.com/hazyhaar/whiteout-ext/internal/model"
	"github.com/hazyhaar/whiteout-ext/internal/token"
)

// tokenizeStep produces the token stream.
type tokenizeStep struct{}

func (tokenizeStep) Name() string { return "tokenize" }

func (tokenizeStep) Do(_ context.Context, result *model.ProcessResult) error {
	result.Tokens = token.Tokenize(result.Text)
	return nil
}

// detectStep guesses the language and runs local detection passes.
type detectStep struct {
	detector *detect.Detector
}

func (detectStep) Name() string { return "detect" }

func (s detectStep) Do(_ context.Context, result *model.ProcessResult) error {
	result.Language = detect.Language(result.Tokens)
	result.Groups = s.detector.Groups(result.Tokens, result.Language)
	return nil
}

// classifyStep queries the remote classification service. Remote failures
// degrade the result; only cache errors abort.
type classifyStep struct {
	client *classify.Client
}

func (classifyStep) Name() string { return "classify" }

func (s classifyStep) Do(ctx context.Context, result *model.ProcessResult) error {
	remote, degraded, err := s.client.ClassifyBatch(ctx, result.Groups)
	if err != nil {
		return err
	}
	result.Remote = remote
	result.RemoteDegraded = degraded
	return nil
}

// assembleStep fuses local and remote signals into entities and assigns
// aliases against the session alias map.
type assembleStep struct {
	aliasMap  map[string]string
	generator *alias.Generator
}

func (assembleStep) Name() string { return "assemble" }

func (s assembleStep) Do(_ context.Context, result *model.ProcessResult) error {
	result.Entities = assemble.Entities(result.Text, result.Groups, result.Remote, s.aliasMap, s.generator)
	return nil
}

// substituteStep produces the anonymized text.
type substituteStep struct{}

func (substituteStep) Name() string { return "substitute" }

func (substituteStep) Do(_ context.Context, result *model.ProcessResult) error {
	result.AnonymizedText = Substitute(result.Text, result.Entities)
	return nil
}
