package main

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/hris-core-go/internal/config"
	"github.com/cmlabs-hris/hris-core-go/internal/domain/user"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage user accounts",
}

var createUserReq user.CreateUserRequest

var userCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an account that can log in",
	Example: `  hris user create --name "Ana Putri" --email ana@example.com --password secret123 \
    --role EMPLOYEE --department Engineering --job-title "Backend Engineer"`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		dbConfig, err := config.LoadDatabase()
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		repos, err := openRepositories(ctx, *dbConfig)
		if err != nil {
			return err
		}
		defer repos.close(context.Background())

		created, err := createUser(ctx, repos.users, createUserReq)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "created user %s <%s> roles=%v\n", created.ID, created.Email, created.Roles)
		return nil
	},
}

// createUser validates the request and stores the account with a bcrypt hash.
func createUser(ctx context.Context, users user.UserRepository, req user.CreateUserRequest) (user.UserResponse, error) {
	if err := req.Validate(); err != nil {
		return user.UserResponse{}, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return user.UserResponse{}, fmt.Errorf("hash password: %w", err)
	}
	passwordHash := string(hashed)

	roles := req.Roles
	if len(roles) == 0 {
		roles = []string{string(user.RoleEmployee)}
	}

	created, err := users.Create(ctx, user.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: &passwordHash,
		Roles:        user.NormalizeRoles(roles),
		Department:   req.Department,
		JobTitle:     req.JobTitle,
		IsActive:     true,
	})
	if err != nil {
		return user.UserResponse{}, err
	}
	return user.ToResponse(created), nil
}

func init() {
	flags := userCreateCmd.Flags()
	flags.StringVar(&createUserReq.Name, "name", "", "full name")
	flags.StringVar(&createUserReq.Email, "email", "", "login email")
	flags.StringVar(&createUserReq.Password, "password", "", "initial password (min 8 characters)")
	flags.StringSliceVar(&createUserReq.Roles, "role", nil, "role, repeatable: ADMIN, MANAGER or EMPLOYEE")
	flags.StringVar(&createUserReq.Department, "department", "", "department")
	flags.StringVar(&createUserReq.JobTitle, "job-title", "", "job title")
	_ = userCreateCmd.MarkFlagRequired("name")
	_ = userCreateCmd.MarkFlagRequired("email")
	_ = userCreateCmd.MarkFlagRequired("password")

	userCmd.AddCommand(userCreateCmd)
	rootCmd.AddCommand(userCmd)
}
