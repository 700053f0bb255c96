// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package content

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/olegiv/autopost-go/internal/model"
)

// Output labels the model is asked to emit. Parsing tolerates their
// absence by treating the whole response as the body.
const (
	labelTitle = "TITLE:"
	labelMeta  = "META:"
	labelBody  = "BODY:"
)

// OpenAIGenerator drafts articles with the OpenAI chat completions API.
// The key is fetched per call so settings changes apply without a restart.
type OpenAIGenerator struct {
	keys   func() model.APIKeys
	model  string
	logger *slog.Logger
}

// NewOpenAIGenerator creates a generator using the given chat model.
func NewOpenAIGenerator(keys func() model.APIKeys, chatModel string, logger *slog.Logger) *OpenAIGenerator {
	return &OpenAIGenerator{keys: keys, model: chatModel, logger: logger}
}

// Generate drafts one article.
func (g *OpenAIGenerator) Generate(ctx context.Context, req Request) (*Article, error) {
	key := g.keys().OpenAIAPIKey
	if key == "" {
		return nil, fmt.Errorf("openai: %w", ErrNoAPIKey)
	}

	client := openai.NewClient(option.WithAPIKey(key))

	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(g.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt(req)),
			openai.UserMessage(userPrompt(req)),
		},
		Temperature:         openai.Float(0.7),
		MaxCompletionTokens: openai.Int(4000),
	}

	completion, err := client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai chat completion: %w", err)
	}
	if len(completion.Choices) == 0 {
		return nil, fmt.Errorf("openai chat completion: empty response")
	}

	article := parseArticle(completion.Choices[0].Message.Content, req)
	g.logger.Debug("article generated",
		"title", article.Title,
		"words", article.WordCount,
		"model", g.model)
	return article, nil
}

func systemPrompt(req Request) string {
	lang := languageName(req.Language)
	var b strings.Builder
	fmt.Fprintf(&b, "You are an expert cryptocurrency content writer. Write in %s.\n", lang)
	fmt.Fprintf(&b, "Produce an SEO-optimized blog article of %d to %d words in markdown: ", req.MinWords, req.MaxWords)
	b.WriteString("a short introduction, at least four '## ' sections with concrete detail, and a conclusion.\n")
	b.WriteString("Respond in exactly this format:\n")
	b.WriteString(labelTitle + " <final article title>\n")
	b.WriteString(labelMeta + " <meta description under 160 characters>\n")
	b.WriteString(labelBody + "\n<the full markdown article>\n")
	return b.String()
}

func userPrompt(req Request) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Article title: %s\n", req.Title)
	if len(req.Keywords) > 0 {
		fmt.Fprintf(&b, "Target keywords: %s\n", strings.Join(req.Keywords, ", "))
	}
	return b.String()
}

// parseArticle extracts the labelled sections from the model output. When
// the labels are missing the entire text becomes the body and the meta
// description is derived from its first sentences.
func parseArticle(text string, req Request) *Article {
	article := &Article{
		Title:    req.Title,
		Keywords: req.Keywords,
	}

	body := text
	if i := strings.Index(text, labelBody); i >= 0 {
		head := text[:i]
		body = strings.TrimSpace(text[i+len(labelBody):])

		for _, line := range strings.Split(head, "\n") {
			line = strings.TrimSpace(line)
			switch {
			case strings.HasPrefix(line, labelTitle):
				if v := strings.TrimSpace(strings.TrimPrefix(line, labelTitle)); v != "" {
					article.Title = v
				}
			case strings.HasPrefix(line, labelMeta):
				article.MetaDescription = strings.TrimSpace(strings.TrimPrefix(line, labelMeta))
			}
		}
	} else {
		body = strings.TrimSpace(body)
	}

	article.Body = body
	article.WordCount = CountWords(body)
	if article.MetaDescription == "" {
		article.MetaDescription = excerpt(body, 160)
	}
	return article
}

// excerpt returns the beginning of the plain text, cut at a word boundary.
func excerpt(text string, limit int) string {
	text = strings.Join(strings.Fields(stripMarkdown(text)), " ")
	if len(text) <= limit {
		return text
	}
	cut := text[:limit]
	if i := strings.LastIndexByte(cut, ' '); i > 0 {
		cut = cut[:i]
	}
	return cut + "..."
}

// stripMarkdown removes the few markdown markers that would look wrong in
// a meta description.
func stripMarkdown(s string) string {
	replacer := strings.NewReplacer("#", "", "*", "", "`", "", "_", " ")
	return replacer.Replace(s)
}

// languageName maps the configured tag to a name usable in a prompt.
func languageName(tag string) string {
	switch strings.ToLower(tag) {
	case "id", "id-id":
		return "Indonesian"
	case "en", "en-us", "en-gb", "":
		return "English"
	default:
		return tag
	}
}
