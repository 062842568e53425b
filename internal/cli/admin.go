package cli

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
	"prepify-quiz/internal/app"
	"prepify-quiz/internal/auth"
	"prepify-quiz/internal/config"
	"prepify-quiz/internal/domain"
)

// NewAddAdminCmd bootstraps an administrator account.
func NewAddAdminCmd(configPath *string) *cobra.Command {
	var username, password string
	cmd := &cobra.Command{
		Use:   "add-admin",
		Short: "Create an administrator account",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStores(cmd.Context(), *configPath, func(cfg config.Config, st stores) error {
				if err := auth.NewService(st.users, cfg.Auth.BcryptCost).AddAdmin(cmd.Context(), username, password); err != nil {
					return err
				}
				log.Printf("admin %s created", username)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "admin username")
	cmd.Flags().StringVar(&password, "password", "", "admin password")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

// NewImportQuestionsCmd seeds the question bank from a YAML file.
func NewImportQuestionsCmd(configPath *string) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "import-questions",
		Short: "Import questions from a YAML file",
		RunE: func(cmd *cobra.Command, args []string) error {
			questions, err := readQuestions(file)
			if err != nil {
				return err
			}
			return withStores(cmd.Context(), *configPath, func(_ config.Config, st stores) error {
				n, err := importQuestions(cmd.Context(), app.NewAdminService(st.questions), questions)
				log.Printf("imported %d of %d questions from %s", n, len(questions), file)
				return err
			})
		},
	}
	cmd.Flags().StringVar(&file, "file", "questions.yaml", "YAML file with a top-level questions list")
	return cmd
}

type questionFile struct {
	Questions []domain.Question `yaml:"questions"`
}

func readQuestions(path string) ([]domain.Question, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f questionFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return f.Questions, nil
}

// importQuestions stops at the first invalid question; earlier ones stay imported.
func importQuestions(ctx context.Context, admin *app.AdminService, questions []domain.Question) (int, error) {
	for i, q := range questions {
		q.ID = 0
		if _, err := admin.AddQuestion(ctx, q); err != nil {
			return i, fmt.Errorf("question %d: %w", i+1, err)
		}
	}
	return len(questions), nil
}

func withStores(ctx context.Context, configPath string, fn func(config.Config, stores) error) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	st, err := openStores(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.close()
	return fn(cfg, st)
}
