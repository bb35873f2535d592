package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var loginCmd = &cobra.Command{
	Use:   "login <email> <password>",
	Short: "Sign in to the backend",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp()
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.session.Login(cmd.Context(), args[0], args[1]); err != nil {
			return fmt.Errorf("login failed: %s", err)
		}

		user := a.session.User()
		fmt.Printf("Signed in as %s <%s>\n", user.Name, user.Email)
		return nil
	},
}

var registerCmd = &cobra.Command{
	Use:   "register <name> <email> <password>",
	Short: "Create an account and sign in",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp()
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.session.Register(cmd.Context(), args[0], args[1], args[2]); err != nil {
			return fmt.Errorf("registration failed: %s", err)
		}

		user := a.session.User()
		fmt.Printf("Account created, signed in as %s <%s>\n", user.Name, user.Email)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and clear the stored session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp()
		if err != nil {
			return err
		}
		defer a.Close()

		a.session.Logout(cmd.Context())
		fmt.Println("Signed out")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the current session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp()
		if err != nil {
			return err
		}
		defer a.Close()

		user := a.session.User()
		if user == nil {
			fmt.Println("Not signed in")
			return nil
		}

		if done, err := printStructured(user); done || err != nil {
			return err
		}
		fmt.Printf("%s <%s> (role %s, id %d)\n", user.Name, user.Email, user.Role, user.ID)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
}
