package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"ibancheck/internal/platform/config"
	platformkafka "ibancheck/internal/platform/kafka"
	"ibancheck/internal/platform/postgres"
	"ibancheck/pkg/platform/audit/consumer"
	pgstore "ibancheck/pkg/platform/audit/store/postgres"
)

func auditCmd(root *rootOptions) *cobra.Command {
	c := &cobra.Command{
		Use:   "audit",
		Short: "Audit trail maintenance",
	}
	c.AddCommand(auditArchiveCmd(root))
	return c
}

func auditArchiveCmd(root *rootOptions) *cobra.Command {
	var group string

	c := &cobra.Command{
		Use:   "archive",
		Short: "Copy the Kafka audit stream into Postgres",
		Long: `Archive consumes KAFKA_AUDIT_TOPIC from KAFKA_BROKERS as a consumer group
and appends every event to the audit_events table at DATABASE_URL. Offsets are
committed only after an event is stored, so a restart resumes where it stopped.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg := config.FromEnv().Audit
			if len(cfg.KafkaBrokers) == 0 {
				return errors.New("KAFKA_BROKERS is required")
			}
			if cfg.DatabaseURL == "" {
				return errors.New("DATABASE_URL is required")
			}
			log := root.logger()

			db, err := postgres.Open(ctx, cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer db.Close()

			store := pgstore.New(db)
			if err := store.Migrate(ctx); err != nil {
				return err
			}

			client, err := platformkafka.NewConsumer(cfg.KafkaBrokers, cfg.KafkaTopic, group)
			if err != nil {
				return err
			}
			defer client.Close()

			log.Info("archiving audit stream", "topic", cfg.KafkaTopic, "group", group)
			archiver := consumer.New(client, consumer.NewArchiveRouter(store, log), log)
			err = archiver.Run(ctx)
			log.Info("audit archive stopped", "archived", archiver.Processed())
			return err
		},
	}

	c.Flags().StringVar(&group, "group", "ibancheck-audit-archiver", "Kafka consumer group")
	return c
}
