package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/studyhub/studyhub-backend/internal/config"
	"github.com/studyhub/studyhub-backend/internal/database"
	"github.com/studyhub/studyhub-backend/internal/logger"
	"github.com/studyhub/studyhub-backend/internal/model"
	"github.com/studyhub/studyhub-backend/internal/repository"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/term"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	adminRepo := repository.NewAdminRepository(pool)

	// ─── CLI Input ─────────────────────────────────────────────────────
	reader := bufio.NewReader(os.Stdin)

	fmt.Println("=== Grant Admin Access ===")

	// Name
	fmt.Print("Enter Name: ")
	name, _ := reader.ReadString('\n')
	name = strings.TrimSpace(name)
	if name == "" {
		fmt.Println("Error: Name is required")
		return
	}

	// Email
	fmt.Print("Enter Email: ")
	email, _ := reader.ReadString('\n')
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		fmt.Println("Error: Email is required")
		return
	}

	// Role
	fmt.Print("Enter Role (admin/super_admin, default admin): ")
	roleStr, _ := reader.ReadString('\n')
	roleStr = strings.TrimSpace(roleStr)
	if roleStr == "" {
		roleStr = string(model.RoleAdmin)
	}
	role := model.NormalizeRole(roleStr)
	if role == model.RoleViewer {
		fmt.Println("Error: Role must be admin or super_admin")
		return
	}

	// Password (optional; only needed for dashboard password login)
	fmt.Print("Enter Password (optional, blank to skip): ")
	bytePassword, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		fmt.Println("\nError reading password")
		return
	}
	password := string(bytePassword)
	fmt.Println() // Newline after password input
	if password != "" && len(password) < 6 {
		fmt.Println("Error: Password must be at least 6 characters")
		return
	}

	// ─── Logic ─────────────────────────────────────────────────────────
	admin := &model.Admin{
		Email: email,
		Name:  name,
		Role:  string(role),
	}

	// New records get explicit flags so they never resolve through the
	// legacy all-NULL path. Admins start with the full set; trim later
	// from the dashboard.
	perms := model.AllPermissions()
	admin.CanManageAnnouncements = &perms.ManageAnnouncements
	admin.CanBroadcastEmail = &perms.BroadcastEmail
	admin.CanSendPush = &perms.SendPush
	admin.CanUploadResources = &perms.UploadResources
	admin.CanEditSubjects = &perms.EditSubjects

	if password != "" {
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), cfg.BcryptCost)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to hash password")
		}
		admin.PasswordHash = string(hashedPassword)
	}

	if err := adminRepo.Create(ctx, admin); err != nil {
		log.Fatal().Err(err).Msg("Failed to create admin")
	}

	fmt.Printf("\nSuccess! Admin '%s' (%s) created with ID: %d\n", admin.Name, admin.Email, admin.ID)
}
