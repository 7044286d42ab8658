package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SaveOptimization inserts an optimization record and increments the user's
// weekly usage counter in the same transaction, so history and quota never
// drift apart. Returns the stored record and the new usage count.
func (db *DB) SaveOptimization(ctx context.Context, rec *OptimizationRecord, weekStart time.Time) (*OptimizationRecord, int, error) {
	keywordsJSON, err := json.Marshal(emptyToSlice(rec.KeywordsAdded))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to marshal keywords: %w", err)
	}
	improvementsJSON, err := json.Marshal(emptyToSlice(rec.ImprovementsMade))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to marshal improvements: %w", err)
	}

	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	stored := *rec
	err = tx.QueryRow(ctx,
		`INSERT INTO optimized_resumes
		 (user_id, job_title, job_description, original_score, optimized_score,
		  score_improvement, match_level, optimized_yaml, keywords_added, improvements_made)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING id, created_at`,
		rec.UserID, rec.JobTitle, rec.JobDescription, rec.OriginalScore, rec.OptimizedScore,
		rec.ScoreImprovement, rec.MatchLevel, rec.OptimizedYAML, keywordsJSON, improvementsJSON,
	).Scan(&stored.ID, &stored.CreatedAt)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to save optimization: %w", err)
	}

	count, err := incrementUsage(ctx, tx, rec.UserID, weekStart)
	if err != nil {
		return nil, 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, 0, fmt.Errorf("failed to commit optimization: %w", err)
	}

	return &stored, count, nil
}

// ListOptimizations returns the user's optimization history, newest first.
func (db *DB) ListOptimizations(ctx context.Context, userID uuid.UUID) ([]*OptimizationRecord, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, user_id, job_title, job_description, original_score, optimized_score,
		        score_improvement, match_level, optimized_yaml, keywords_added,
		        improvements_made, created_at
		 FROM optimized_resumes
		 WHERE user_id = $1
		 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list optimizations: %w", err)
	}
	defer rows.Close()

	var records []*OptimizationRecord
	for rows.Next() {
		var rec OptimizationRecord
		var keywordsJSON, improvementsJSON []byte
		err := rows.Scan(&rec.ID, &rec.UserID, &rec.JobTitle, &rec.JobDescription,
			&rec.OriginalScore, &rec.OptimizedScore, &rec.ScoreImprovement,
			&rec.MatchLevel, &rec.OptimizedYAML, &keywordsJSON, &improvementsJSON,
			&rec.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan optimization: %w", err)
		}
		if err := json.Unmarshal(keywordsJSON, &rec.KeywordsAdded); err != nil {
			return nil, fmt.Errorf("failed to parse keywords: %w", err)
		}
		if err := json.Unmarshal(improvementsJSON, &rec.ImprovementsMade); err != nil {
			return nil, fmt.Errorf("failed to parse improvements: %w", err)
		}
		records = append(records, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read optimizations: %w", err)
	}
	return records, nil
}

func emptyToSlice(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
