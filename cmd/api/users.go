package main

import (
	"bufio"
	"fmt"
	"os"

	"placement-portal/internal/accounts"
	"placement-portal/internal/auth"
	"placement-portal/internal/placement"
	"placement-portal/pkg/utils"

	"github.com/spf13/cobra"
)

var (
	emailFlag     string
	nameFlag      string
	passwordFlag  string
	rolesInput    []string
	companyIDFlag int64
	stdinFlag     bool
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage portal accounts",
}

var createUserCmd = &cobra.Command{
	Use:     "create",
	Short:   "Create an account with any roles (bootstrap the first ADMIN with this)",
	PreRunE: loadConfig,
	RunE: func(cmd *cobra.Command, args []string) error {
		if emailFlag == "" {
			return fmt.Errorf("--email flag is required")
		}
		if len(rolesInput) == 0 {
			return fmt.Errorf("at least one role must be specified using --role")
		}
		roles, err := auth.ParseRoles(rolesInput)
		if err != nil {
			return err
		}

		password := passwordFlag
		if stdinFlag {
			scanner := bufio.NewScanner(os.Stdin)
			fmt.Print("Enter password: ")
			if scanner.Scan() {
				password = scanner.Text()
			}
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("failed to read password: %w", err)
			}
		}
		if password == "" {
			return fmt.Errorf("password is required (use --password or --stdin)")
		}

		ctx := cmd.Context()
		db, err := utils.OpenPostgres(ctx, "pgx", cfg.PostgresDSN(), utils.PostgresPoolConfig{MaxOpenConns: 2})
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer db.Close()

		svc := accounts.NewService(
			accounts.NewPostgresRepo(db),
			placement.NewService(placement.NewPostgresRepo(db)),
			cfg.Auth.BcryptCost,
		)

		name := nameFlag
		if name == "" {
			name = emailFlag
		}
		req := accounts.RegisterRequest{Email: emailFlag, Name: name, Password: password, Roles: roles}
		if companyIDFlag > 0 {
			req.CompanyID = &companyIDFlag
		}
		u, err := svc.AdminRegister(ctx, req)
		if err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}

		fmt.Printf("created user %s (%s) roles=%v\n", u.ID, u.Email, auth.RoleStrings(u.Roles))
		return nil
	},
}

func init() {
	createUserCmd.Flags().StringVar(&emailFlag, "email", "", "account email")
	createUserCmd.Flags().StringVar(&nameFlag, "name", "", "display name (defaults to the email)")
	createUserCmd.Flags().StringVar(&passwordFlag, "password", "", "initial password")
	createUserCmd.Flags().StringSliceVar(&rolesInput, "role", nil, "role to grant (repeatable): ADMIN, COMPANY_HR, PLACEMENT_OFFICER, STUDENT")
	createUserCmd.Flags().Int64Var(&companyIDFlag, "company-id", 0, "company the COMPANY_HR account belongs to")
	createUserCmd.Flags().BoolVar(&stdinFlag, "stdin", false, "read password from stdin")
	usersCmd.AddCommand(createUserCmd)
}
