package cli

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/daleel/internal/auth"
	"github.com/roach88/daleel/internal/record"
	"github.com/roach88/daleel/internal/store"
)

// UserAddResult is the output of user add.
type UserAddResult struct {
	ID    string      `json:"id"`
	Email string      `json:"email"`
	Role  record.Role `json:"role"`
}

func (r UserAddResult) String() string {
	return fmt.Sprintf("Created %s user %s (%s)", r.Role, r.Email, r.ID)
}

// NewUserCommand creates the user command group.
func NewUserCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage admin accounts",
	}
	cmd.AddCommand(newUserAddCommand(rootOpts))
	return cmd
}

func newUserAddCommand(rootOpts *RootOptions) *cobra.Command {
	var email, role, dbPath string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create an admin account",
		Long: `Create an admin panel account. The password is read from the first line
of standard input.

Example:
  echo "$PASSWORD" | daleel user add --email editor@daleel.example --role EDITOR`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := rootOpts.formatter(cmd)

			r := record.Role(strings.ToUpper(role))
			if !auth.HasRole(r, record.RoleAdmin, record.RoleEditor, record.RoleViewer) {
				return f.Fail(ExitCommandError, ErrCodeArgument, fmt.Sprintf("invalid role %q", role), nil)
			}
			if !strings.Contains(email, "@") {
				return f.Fail(ExitCommandError, ErrCodeArgument, fmt.Sprintf("invalid email %q", email), nil)
			}

			password, err := readPassword(cmd)
			if err != nil {
				return f.Fail(ExitCommandError, ErrCodeArgument, "failed to read password", err)
			}
			hash, err := auth.HashPassword(password)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to hash password", err)
			}

			path, err := rootOpts.databasePath(f, dbPath)
			if err != nil {
				return err
			}
			st, err := store.Open(path)
			if err != nil {
				return f.Fail(ExitCommandError, ErrCodeDatabase, "failed to open database", err)
			}
			defer st.Close()

			u, err := st.CreateUser(cmd.Context(), record.User{Email: email, PasswordHash: hash, Role: r, IsActive: true})
			if errors.Is(err, store.ErrConflict) {
				return f.Fail(ExitFailure, "", fmt.Sprintf("user %s already exists", email), err)
			}
			if err != nil {
				return f.Fail(ExitCommandError, ErrCodeDatabase, "failed to create user", err)
			}
			return f.Success(UserAddResult{ID: u.ID, Email: u.Email, Role: u.Role})
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&role, "role", string(record.RoleEditor), "ADMIN, EDITOR or VIEWER")
	cmd.Flags().StringVar(&dbPath, "db", "", "path to SQLite database (overrides config)")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

func readPassword(cmd *cobra.Command) (string, error) {
	sc := bufio.NewScanner(cmd.InOrStdin())
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return "", err
		}
		return "", errors.New("no password on standard input")
	}
	password := strings.TrimRight(sc.Text(), "\r")
	if len(password) < 8 {
		return "", errors.New("password must be at least 8 characters")
	}
	return password, nil
}
