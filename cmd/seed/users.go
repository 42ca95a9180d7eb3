package main

import (
	"context"
	"errors"
	"fmt"

	autherrors "petcare/internal/auth/errors"
	"petcare/internal/auth/repository"
	"petcare/internal/auth/service"
	"petcare/pkg/model"

	"github.com/spf13/cobra"
)

type demoUser struct {
	username  string
	email     string
	password  string
	firstName string
	lastName  string
	role      string
}

var demoUsers = []demoUser{
	{"admin", "admin@petcare.com", "admin123", "Admin", "User", model.RoleAdmin},
	{"drsmith", "drsmith@petcare.com", "vet123", "John", "Smith", model.RoleVeterinarian},
	{"staff", "staff@petcare.com", "staff123", "Jane", "Doe", model.RoleStaff},
}

var demoVets = []demoUser{
	{"drsmith", "dr.smith@petcare.com", "vet123", "John", "Smith", model.RoleVeterinarian},
	{"drjohnson", "dr.johnson@petcare.com", "vet123", "Sarah", "Johnson", model.RoleVeterinarian},
	{"drbrown", "dr.brown@petcare.com", "vet123", "Michael", "Brown", model.RoleVeterinarian},
	{"drwilson", "dr.wilson@petcare.com", "vet123", "Emily", "Wilson", model.RoleVeterinarian},
}

const wantedVets = 4

func usersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "users",
		Short: "Create the admin, veterinarian and staff demo accounts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := withTimeout(cmd)
			defer cancel()
			return seedUsers(ctx)
		},
	}
}

func vetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "vets",
		Short: "Create four veterinarians unless they already exist",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := withTimeout(cmd)
			defer cancel()
			return seedVets(ctx)
		},
	}
}

func seedUsers(ctx context.Context) error {
	repo := repository.NewMongoUserRepository(cfg)
	for _, u := range demoUsers {
		if err := createUser(ctx, repo, u); err != nil {
			return err
		}
	}
	return nil
}

func seedVets(ctx context.Context) error {
	repo := repository.NewMongoUserRepository(cfg)

	count, err := repo.CountByRole(ctx, model.RoleVeterinarian)
	if err != nil {
		return err
	}
	if count >= wantedVets {
		cfg.Log.Info("Veterinarians already exist", "count", count)
		return nil
	}

	for _, u := range demoVets {
		if err := createUser(ctx, repo, u); err != nil {
			return err
		}
	}
	return nil
}

// createUser skips accounts whose username or email is already taken.
func createUser(ctx context.Context, repo repository.UserRepository, u demoUser) error {
	existing, err := repo.FindByUsernameOrEmail(ctx, u.username, u.email)
	if err != nil && !errors.Is(err, autherrors.ErrNotFound) {
		return err
	}
	if existing != nil {
		cfg.Log.Info("User exists, skipping", "username", existing.Username, "role", existing.Role)
		return nil
	}

	hash, err := service.HashPassword(u.password, cfg.BcryptCost)
	if err != nil {
		return err
	}

	user := &model.User{
		Username:     u.username,
		Email:        u.email,
		PasswordHash: hash,
		FirstName:    u.firstName,
		LastName:     u.lastName,
		Role:         u.role,
		IsActive:     true,
	}
	if err := repo.Create(ctx, user); err != nil {
		return fmt.Errorf("failed to create %s: %w", u.username, err)
	}
	cfg.Log.Info("Created user", "username", u.username, "role", u.role, "password", u.password)
	return nil
}
