package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dharsanguruparan/vdocsign/internal/database"
	"github.com/dharsanguruparan/vdocsign/internal/model"
	"github.com/dharsanguruparan/vdocsign/internal/queue"
	"github.com/dharsanguruparan/vdocsign/internal/repository"
	"github.com/dharsanguruparan/vdocsign/internal/s3storage"
)

func (a *app) redisOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     a.cfg.RedisAddr,
		Password: a.cfg.RedisPassword,
		DB:       a.cfg.RedisDB,
	}
}

func (a *app) archiveRepo(ctx context.Context) (*repository.ArchiveRepository, *pgxpool.Pool, error) {
	pool, err := database.Connect(ctx, a.cfg.DatabaseURL, 2)
	if err != nil {
		return nil, nil, fmt.Errorf("connect database: %w", err)
	}
	if err := database.EnsureSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, err
	}
	return repository.NewArchiveRepository(pool), pool, nil
}

// enqueueArchive records a queued archive for doc and hands it to the worker.
func (a *app) enqueueArchive(ctx context.Context, doc *model.Document) (string, error) {
	repo, pool, err := a.archiveRepo(ctx)
	if err != nil {
		return "", err
	}
	defer pool.Close()

	rec := &repository.Archive{
		ID:         uuid.NewString(),
		DocumentID: doc.ID,
		FileName:   doc.OriginalName,
		FileURL:    a.cfg.FileURL(doc.FilePath),
	}
	if err := repo.Create(ctx, rec); err != nil {
		return "", err
	}

	client := asynq.NewClient(a.redisOpt())
	defer client.Close()
	err = queue.EnqueueArchive(ctx, client, queue.ArchivePayload{
		ArchiveID:  rec.ID,
		DocumentID: rec.DocumentID,
		FileURL:    rec.FileURL,
		FileName:   rec.FileName,
	})
	if err != nil {
		if markErr := repo.MarkFailed(ctx, rec.ID, err.Error()); markErr != nil {
			a.logger.Warn("mark archive failed", zap.String("archive_id", rec.ID), zap.Error(markErr))
		}
		return "", err
	}
	a.logger.Info("archive queued", zap.String("archive_id", rec.ID), zap.String("document_id", doc.ID))
	return rec.ID, nil
}

func newArchiveCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "archive",
		Short: "Inspect archived signed documents",
	}
	cmd.AddCommand(newArchiveStatusCmd(a), newArchiveListCmd(a), newArchiveURLCmd(a))
	return cmd
}

func newArchiveStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status <archive-id>",
		Short: "Show one archive entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, pool, err := a.archiveRepo(cmd.Context())
			if err != nil {
				return err
			}
			defer pool.Close()
			rec, err := repo.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			rec.Content = ""
			return a.printJSON(rec)
		},
	}
}

func newArchiveListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list <document-id>",
		Short: "List the archives of a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, pool, err := a.archiveRepo(cmd.Context())
			if err != nil {
				return err
			}
			defer pool.Close()
			list, err := repo.ListByDocument(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			for i := range list {
				list[i].Content = ""
			}
			return a.printJSON(list)
		},
	}
}

func newArchiveURLCmd(a *app) *cobra.Command {
	var text bool
	cmd := &cobra.Command{
		Use:   "url <archive-id>",
		Short: "Print a temporary download link for an archived copy",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			repo, pool, err := a.archiveRepo(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()
			rec, err := repo.Get(ctx, args[0])
			if err != nil {
				return err
			}
			if rec.Status != repository.StatusCompleted || rec.ObjectKey == nil {
				return errors.New("archive " + rec.ID + " is " + string(rec.Status))
			}
			store, err := s3storage.New(a.cfg)
			if err != nil {
				return err
			}
			key := *rec.ObjectKey
			if text {
				key = s3storage.TextKey(key)
			}
			u, err := store.PresignURL(ctx, key, a.cfg.PresignTTL)
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, u)
			return nil
		},
	}
	cmd.Flags().BoolVar(&text, "text", false, "Link the extracted text instead of the PDF")
	return cmd
}
