package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"room-reservation/internal/access"
	"room-reservation/internal/auth"
	"room-reservation/internal/storage"
)

// Environment variable read when --password is not given
const passwordEnv = "ADMIN_PASSWORD"

var (
	adminPassword string
	adminNoStaff  bool
)

var adminsCmd = &cobra.Command{
	Use:   "admins",
	Short: "Manage staff users",
	Long:  `Create staff users, change their passwords and list them with their access roles.`,
}

// readPassword takes the flag, then the environment, then one line of stdin.
func readPassword(in io.Reader) (string, error) {
	if adminPassword != "" {
		return adminPassword, nil
	}
	if pw := os.Getenv(passwordEnv); pw != "" {
		return pw, nil
	}

	fmt.Fprint(os.Stderr, "Password: ")
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	pw := strings.TrimRight(line, "\r\n")
	if pw == "" {
		return "", errors.New("password must not be empty")
	}
	return pw, nil
}

var adminsCreateCmd = &cobra.Command{
	Use:   "create [username]",
	Short: "Create a staff user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		username := strings.TrimSpace(args[0])
		if username == "" || len(username) > 150 {
			return errors.New("username must be 1 to 150 characters")
		}

		password, err := readPassword(cmd.InOrStdin())
		if err != nil {
			return err
		}
		hash, err := auth.HashPassword(password)
		if err != nil {
			return err
		}

		user := &storage.StaffUser{Username: username, PasswordHash: hash, IsStaff: !adminNoStaff}
		if err := provider.CreateStaffUser(cmd.Context(), user); err != nil {
			return fmt.Errorf("error creating user: %w", err)
		}

		fmt.Printf("User '%s' created (staff: %t).\n", user.Username, user.IsStaff)
		return nil
	},
}

var adminsPasswdCmd = &cobra.Command{
	Use:   "passwd [username]",
	Short: "Change the password of a staff user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		password, err := readPassword(cmd.InOrStdin())
		if err != nil {
			return err
		}
		hash, err := auth.HashPassword(password)
		if err != nil {
			return err
		}

		err = provider.UpdateStaffPassword(cmd.Context(), args[0], hash)
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("user '%s' not found", args[0])
		} else if err != nil {
			return fmt.Errorf("error updating password: %w", err)
		}

		fmt.Printf("Password of '%s' updated.\n", args[0])
		return nil
	},
}

var adminsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all staff users with their roles",
	RunE: func(cmd *cobra.Command, args []string) error {
		quietLogger()

		rbac, err := access.NewRBACFromConfig(cfg.RBAC)
		if err != nil {
			return fmt.Errorf("failed to load RBAC policy: %w", err)
		}

		users, err := provider.ListStaffUsers(cmd.Context())
		if err != nil {
			return err
		}
		if len(users) == 0 {
			fmt.Println("No users found.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "USERNAME\tSTATUS\tROLES\tCREATED AT")
		fmt.Fprintln(w, "--------\t------\t-----\t----------")
		for _, user := range users {
			status := "Inactive"
			roles := "-"
			if user.IsStaff {
				status = "Staff"
				if r := rbac.GetUserRoles(user.Username); len(r) > 0 {
					roles = strings.Join(r, ", ")
				}
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", user.Username, status, roles, user.CreatedAt.Format(time.RFC3339))
		}
		w.Flush()

		fmt.Printf("\nTotal users: %d\n", len(users))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(adminsCmd)
	adminsCmd.AddCommand(adminsCreateCmd, adminsPasswdCmd, adminsListCmd)

	for _, c := range []*cobra.Command{adminsCreateCmd, adminsPasswdCmd} {
		c.Flags().StringVar(&adminPassword, "password", "", "password (default: $"+passwordEnv+" or prompt)")
	}
	adminsCreateCmd.Flags().BoolVar(&adminNoStaff, "no-staff", false, "create the user without staff permissions")
}
