// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package publish runs scheduled posts through generation, the
// plagiarism gate and submission to the blog host.
package publish

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/olegiv/autopost-go/internal/blogger"
	"github.com/olegiv/autopost-go/internal/content"
	"github.com/olegiv/autopost-go/internal/imaging"
	"github.com/olegiv/autopost-go/internal/model"
	"github.com/olegiv/autopost-go/internal/track"
)

var (
	// ErrNotConfigured means no provider key is present at all.
	ErrNotConfigured = errors.New("api keys not configured")

	// ErrPlagiarism means the article failed the originality gate.
	ErrPlagiarism = errors.New("plagiarism threshold exceeded")
)

// PlagiarismThreshold is the highest plagiarism percentage an article
// may score and still be submitted.
const PlagiarismThreshold = 15.0

const trackTimeout = 30 * time.Second

// Pipeline wires the collaborators one post passes through. Content and
// Host are required; the other fields disable their step when nil.
type Pipeline struct {
	Content    content.Generator
	Images     imaging.Generator
	Plagiarism content.PlagiarismChecker
	Host       blogger.Publisher
	Research   *content.Researcher
	Tracker    *track.Tracker
	Notifier   *track.Notifier
	Language   string
	Logger     *slog.Logger
}

// Publish runs one post through the pipeline and returns the updated
// copy. The returned post is always safe to persist: on failure its
// status is failed and the error message recorded.
func (p *Pipeline) Publish(ctx context.Context, post model.ScheduledPost, cfg model.PostingConfig, keys model.APIKeys) (model.ScheduledPost, error) {
	log := p.Logger.With("post_id", post.ID, "title", post.Title)

	if !keys.IsConfigured {
		post.MarkFailed(ErrNotConfigured)
		return post, ErrNotConfigured
	}

	if len(post.Keywords) == 0 && cfg.Content.AutoResearchKeywords && p.Research != nil {
		post.Keywords = p.Research.Research(ctx, post.Title)
		log.Debug("keywords researched", "count", len(post.Keywords))
	}

	article, err := p.Content.Generate(ctx, content.Request{
		Title:    post.Title,
		Keywords: post.Keywords,
		Language: p.Language,
		MinWords: cfg.Content.MinWords,
		MaxWords: cfg.Content.MaxWords,
	})
	if err != nil {
		err = fmt.Errorf("generate article: %w", err)
		post.MarkFailed(err)
		return post, err
	}
	if article.Body == "" {
		err = errors.New("generate article: empty body")
		post.MarkFailed(err)
		return post, err
	}
	log.Info("article generated", "words", article.WordCount)

	// A missing hero image never blocks publication.
	var imageURL string
	if cfg.Content.AutoGenerateImages && p.Images != nil {
		if img, imgErr := p.Images.Generate(ctx, post.Title); imgErr != nil {
			log.Warn("hero image generation failed", "error", imgErr)
		} else {
			imageURL = img.URL
		}
	}

	if cfg.Content.PlagiarismCheck && p.Plagiarism != nil {
		score, checkErr := p.Plagiarism.Check(ctx, article.Body)
		if checkErr != nil {
			err = fmt.Errorf("plagiarism check: %w", checkErr)
			post.MarkFailed(err)
			return post, err
		}
		if score > PlagiarismThreshold {
			err = fmt.Errorf("%w: %.1f%%", ErrPlagiarism, score)
			post.MarkFailed(err)
			log.Warn("post rejected by plagiarism gate", "score", score)
			return post, err
		}
		log.Debug("plagiarism check passed", "score", score)
	}

	html, err := content.BuildHTML(article, imageURL)
	if err != nil {
		post.MarkFailed(err)
		return post, err
	}

	url, err := p.Host.Publish(ctx, blogger.Post{
		Title:  article.Title,
		HTML:   html,
		Labels: article.Keywords,
	})
	if err != nil {
		err = fmt.Errorf("submit post: %w", err)
		post.MarkFailed(err)
		return post, err
	}

	post.MarkPublished(time.Now(), url, article.WordCount)
	log.Info("post published", "url", url)

	p.afterPublish(post, article, html)
	return post, nil
}

// afterPublish fires tracking and notifications without blocking the
// caller. Failures here are logged and swallowed.
func (p *Pipeline) afterPublish(post model.ScheduledPost, article *content.Article, html string) {
	if p.Tracker != nil {
		seoScore := 0
		if report, err := content.AnalyzeSEO(html, article.Title); err == nil {
			seoScore = report.Score
		}
		rec := track.Record{
			PostID:      post.ID,
			Title:       post.Title,
			URL:         post.URL,
			WordCount:   post.WordCount,
			SEOScore:    seoScore,
			Keywords:    article.Keywords,
			PublishedAt: *post.PublishedAt,
		}
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), trackTimeout)
			defer cancel()
			if err := p.Tracker.Track(ctx, rec); err != nil {
				p.Logger.Warn("performance tracking failed", "post_id", rec.PostID, "error", err)
			}
		}()
	}

	if p.Notifier != nil {
		p.Notifier.PostPublished(post)
	}
}
