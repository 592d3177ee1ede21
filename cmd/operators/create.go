package operators

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/mail"

	"github.com/spf13/cobra"

	"github.com/tablehost/restaurantapi/internal/config"
	"github.com/tablehost/restaurantapi/internal/db/bunx"
	"github.com/tablehost/restaurantapi/internal/db/models"
	"github.com/tablehost/restaurantapi/internal/domain"
	"github.com/tablehost/restaurantapi/internal/logging"
	"github.com/tablehost/restaurantapi/internal/repository"
	"github.com/tablehost/restaurantapi/internal/services/records"
	"github.com/tablehost/restaurantapi/internal/services/validation"
)

var (
	emailFlag       string
	displayNameFlag string
	firstNameFlag   string
	lastNameFlag    string
	levelFlag       int
)

type createInput struct {
	Email       string
	DisplayName string
	FirstName   string
	LastName    string
	Level       int
}

func (in createInput) validate() error {
	if in.Email == "" {
		return fmt.Errorf("--email flag is required")
	}
	if in.DisplayName == "" {
		return fmt.Errorf("--display-name flag is required")
	}
	if in.FirstName == "" {
		return fmt.Errorf("--first-name flag is required")
	}
	if in.Level != 1 && in.Level != 2 {
		return fmt.Errorf("--level must be 1 or 2")
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return fmt.Errorf("invalid email format: %w", err)
	}
	return nil
}

func (in createInput) body() map[string]any {
	body := map[string]any{
		"email":       in.Email,
		"displayName": in.DisplayName,
		"fname":       in.FirstName,
		"op_lvl":      in.Level,
	}
	if in.LastName != "" {
		body["lname"] = in.LastName
	}
	return body
}

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an operator record",
	RunE: func(cmd *cobra.Command, args []string) error {
		in := createInput{
			Email:       emailFlag,
			DisplayName: displayNameFlag,
			FirstName:   firstNameFlag,
			LastName:    lastNameFlag,
			Level:       levelFlag,
		}
		if err := in.validate(); err != nil {
			return err
		}

		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		logger := logging.New(logging.Options{Debug: cfg.Debug, Format: cfg.LogFormat})
		defer func() { _ = logger.Sync() }()

		ctx := cmd.Context()
		db, err := bunx.NewDB(ctx, bunx.Options{DSN: cfg.DatabaseURL, MaxOpenConns: cfg.MaxDBConnections})
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer bunx.Close(db)

		validator, err := validation.NewSchemaValidator(0)
		if err != nil {
			return fmt.Errorf("failed to create validator: %w", err)
		}
		svc := records.NewOperators(repository.NewBunOperatorRepository(db), validator, logger)

		op, err := createOperator(ctx, svc, in)
		if err != nil {
			return err
		}
		printOperator(cmd.OutOrStdout(), op)
		return nil
	},
}

type operatorCreator interface {
	Create(ctx context.Context, body map[string]any) (*models.Operator, error)
}

func createOperator(ctx context.Context, svc operatorCreator, in createInput) (*models.Operator, error) {
	op, err := svc.Create(ctx, in.body())
	if err == nil {
		return op, nil
	}

	var conflict *domain.ConflictError
	if errors.As(err, &conflict) {
		return nil, fmt.Errorf("operator with email %q already exists", in.Email)
	}
	var invalid *domain.ValidationError
	if errors.As(err, &invalid) {
		msg := "invalid operator"
		for _, d := range invalid.Details {
			msg += "\n  " + d.Message
		}
		return nil, errors.New(msg)
	}
	return nil, fmt.Errorf("failed to create operator: %w", err)
}

func printOperator(w io.Writer, op *models.Operator) {
	fmt.Fprintln(w, "Operator created successfully!")
	fmt.Fprintln(w, "----------------------------------------")
	fmt.Fprintf(w, "Operator ID: %s\n", op.ID)
	fmt.Fprintf(w, "Email: %s\n", op.Email)
	fmt.Fprintf(w, "Display name: %s\n", op.DisplayName)
	fmt.Fprintf(w, "Level: %d\n", op.OpLevel)
	fmt.Fprintln(w, "----------------------------------------")
}
