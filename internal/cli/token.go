package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	jwttoken "ibancheck/internal/jwt_token"
	"ibancheck/internal/platform/config"
)

func tokenCmd(root *rootOptions) *cobra.Command {
	var clientID string
	var subject string
	var ttl time.Duration

	c := &cobra.Command{
		Use:   "token",
		Short: "Mint an API access token signed with JWT_SIGNING_KEY",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if ttl <= 0 {
				return errors.New("--ttl must be positive")
			}
			auth := config.FromEnv().Auth
			svc := jwttoken.NewJWTService(auth.JWTSigningKey, auth.JWTIssuer, auth.JWTAudience)

			token, err := svc.GenerateAccessToken(clientID, subject, ttl)
			if err != nil {
				return err
			}
			root.logger().Debug("issued api token",
				"client_id", clientID,
				"issuer", auth.JWTIssuer,
				"expires_in", ttl,
			)
			_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
			return err
		},
	}

	c.Flags().StringVar(&clientID, "client", "", "client ID embedded in the token (required)")
	c.Flags().StringVar(&subject, "subject", "", "token subject (defaults to the client ID)")
	c.Flags().DurationVar(&ttl, "ttl", time.Hour, "token lifetime")
	_ = c.MarkFlagRequired("client")
	return c
}
