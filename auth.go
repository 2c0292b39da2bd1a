package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/tonimelisma/storefront-go/internal/credstore"
	"github.com/tonimelisma/storefront-go/internal/model"
)

var errEmptyPassword = errors.New("password must not be empty")

func newLoginCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with email and password",
		Long: "Sign in with email and password. The password is read from stdin,\n" +
			"with a prompt and echo turned off when stdin is a terminal.",
		Args: cobra.NoArgs,
		RunE: runLogin,
	}

	cmd.Flags().String("email", "", "account email (required)")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

func newRegisterCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a customer account and sign in",
		Args:  cobra.NoArgs,
		RunE:  runRegister,
	}

	cmd.Flags().String("email", "", "account email (required)")
	cmd.Flags().String("first-name", "", "first name (required)")
	cmd.Flags().String("last-name", "", "last name (required)")
	cmd.Flags().String("phone", "", "phone number")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("first-name")
	_ = cmd.MarkFlagRequired("last-name")

	return cmd
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the session",
		Args:  cobra.NoArgs,
		RunE:  runLogout,
	}
}

func newWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Display the signed-in user",
		Args:  cobra.NoArgs,
		RunE:  runWhoami,
	}
}

// readPassword reads the password from in. On an interactive terminal the
// prompt goes to stderr and echo is turned off; otherwise one line is read.
func readPassword(in io.Reader) (string, error) {
	var password string

	if f, ok := in.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		fmt.Fprint(os.Stderr, "Password: ")

		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(os.Stderr)

		if err != nil {
			return "", fmt.Errorf("reading password: %w", err)
		}

		password = string(b)
	} else {
		line, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return "", fmt.Errorf("reading password: %w", err)
		}

		password = strings.TrimRight(line, "\r\n")
	}

	if password == "" {
		return "", errEmptyPassword
	}

	return password, nil
}

func runLogin(cmd *cobra.Command, _ []string) error {
	sess, err := openSession()
	if err != nil {
		return err
	}

	email, _ := cmd.Flags().GetString("email")

	password, err := readPassword(cmd.InOrStdin())
	if err != nil {
		return err
	}

	ctx, stop := shutdownContext(cmd.Context(), sess.Logger)
	defer stop()

	auth, err := sess.API.Auth.Login(ctx, model.LoginForm{Email: email, Password: password})
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	statusf("Signed in as %s (%s).\n", fullName(auth.UserDetails.FirstName, auth.UserDetails.LastName), auth.UserDetails.Role)

	return nil
}

func runRegister(cmd *cobra.Command, _ []string) error {
	sess, err := openSession()
	if err != nil {
		return err
	}

	form := model.RegisterForm{}
	form.Email, _ = cmd.Flags().GetString("email")
	form.FirstName, _ = cmd.Flags().GetString("first-name")
	form.LastName, _ = cmd.Flags().GetString("last-name")
	form.PhoneNumber, _ = cmd.Flags().GetString("phone")

	form.Password, err = readPassword(cmd.InOrStdin())
	if err != nil {
		return err
	}

	ctx, stop := shutdownContext(cmd.Context(), sess.Logger)
	defer stop()

	auth, err := sess.API.Auth.Register(ctx, form)
	if err != nil {
		return fmt.Errorf("registration failed: %w", err)
	}

	statusf("Account created. Signed in as %s.\n", fullName(auth.UserDetails.FirstName, auth.UserDetails.LastName))

	return nil
}

func runLogout(cmd *cobra.Command, _ []string) error {
	sess, err := openSession()
	if err != nil {
		return err
	}

	if !sess.Store.IsAuthenticated() {
		statusf("Not signed in.\n")

		return nil
	}

	ctx, stop := shutdownContext(cmd.Context(), sess.Logger)
	defer stop()

	// The local session is cleared even when the server call fails.
	logoutErr := sess.API.Auth.Logout(ctx)
	sess.Jar.Clear()

	if logoutErr != nil {
		statusf("Signed out locally; the server did not confirm: %v\n", logoutErr)

		return nil
	}

	statusf("Signed out.\n")

	return nil
}

// whoamiOutput is the JSON schema for `whoami --json`.
type whoamiOutput struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Email       string            `json:"email"`
	Role        model.Role        `json:"role"`
	MemberTier  *model.MemberTier `json:"member_tier,omitempty"`
	TokenSub    string            `json:"token_subject,omitempty"`
	TokenExpiry *time.Time        `json:"token_expires_at,omitempty"`
}

func runWhoami(cmd *cobra.Command, _ []string) error {
	sess, err := openSession()
	if err != nil {
		return err
	}

	st := sess.Store.Snapshot()
	if !st.IsAuthenticated {
		return errNotLoggedIn
	}

	out := whoamiOutput{
		ID:         st.IdentityID,
		Name:       fullName(st.Detail.FirstName, st.Detail.LastName),
		Email:      st.Detail.Email,
		Role:       st.Detail.Role,
		MemberTier: st.Detail.MemberTier,
	}

	info := credstore.InspectToken(sess.Store.AccessToken())
	if !info.Opaque {
		out.TokenSub = info.Subject

		if !info.ExpiresAt.IsZero() {
			out.TokenExpiry = &info.ExpiresAt
		}
	}

	w := cmd.OutOrStdout()

	if flagJSON {
		return printJSON(w, out)
	}

	fmt.Fprintf(w, "%s  %s <%s>\n", initials(st.Detail.FirstName, st.Detail.LastName), out.Name, out.Email)
	fmt.Fprintf(w, "Role:    %s\n", out.Role)

	if out.MemberTier != nil {
		fmt.Fprintf(w, "Tier:    %s\n", *out.MemberTier)
	}

	switch {
	case info.Opaque:
		fmt.Fprintf(w, "Token:   opaque\n")
	case info.ExpiresAt.IsZero():
		fmt.Fprintf(w, "Token:   no expiry\n")
	case info.Expired(time.Now()):
		fmt.Fprintf(w, "Token:   expired %s (refreshed on next request)\n", relativeTime(info.ExpiresAt))
	default:
		fmt.Fprintf(w, "Token:   expires %s\n", formatTime(info.ExpiresAt))
	}

	return nil
}
