package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"runtime/debug"
	"strings"
	"time"

	"github.com/bishnubista/vibe-logger/credentials"
	"github.com/bishnubista/vibe-logger/internal/config"
	apperrors "github.com/bishnubista/vibe-logger/internal/errors"
	"github.com/bishnubista/vibe-logger/token"
	"github.com/common-nighthawk/go-figure"
	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/pkg/errors"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Fatalf("Error: %s\n", err)
	}
}

func run(args []string) (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Recovered from panic: %v\n", r)
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	if len(args) == 0 {
		usage()
		return nil
	}

	cfg := config.New()
	store := credentials.NewStore(cfg.GetCredentialPath(), cfg.GetTokenPath())
	manager, err := token.New(store, cfg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	switch args[0] {
	case "setup":
		return setup(ctx, cfg, store, manager)
	case "status":
		return status(ctx, cfg, manager)
	case "reset":
		return reset(store)
	case "test":
		return testAuth(ctx, manager)
	default:
		usage()
		return errors.Errorf("unknown command %q", args[0])
	}
}

func usage() {
	fmt.Println("Usage: vibelog <setup|status|reset|test>")
}

func setup(ctx context.Context, cfg config.Config, store *credentials.Store, manager *token.Manager) error {
	displayAppname("Vibe Logger")

	if err := manager.Initialize(ctx); err != nil {
		switch {
		case apperrors.Is(err, apperrors.ErrCredentialNotFound):
			fmt.Printf("No OAuth client credential found.\n")
			fmt.Printf("Download the client credentials JSON and save it to:\n  %s\n", cfg.GetCredentialPath())
			return nil
		case apperrors.Is(err, apperrors.ErrCredentialMalformed), apperrors.Is(err, apperrors.ErrTokenMalformed):
			return err
		case apperrors.Is(err, apperrors.ErrRefreshFailed):
			// Stored grant is dead; fall through and re-run the flow.
			fmt.Println("Stored token could not be refreshed, re-authorization required.")
		default:
			return err
		}
	}

	if manager.IsAuthenticated() {
		fmt.Printf("Already authenticated")
		if operator := manager.OperatorIdentity(); operator != "" {
			fmt.Printf(" as %s", operator)
		}
		fmt.Println(".")
		return nil
	}

	url, err := manager.AuthorizationURL()
	if err != nil {
		return err
	}
	fmt.Printf("Open this URL in a browser and grant access:\n\n  %s\n\n", url)
	fmt.Print("Paste the authorization code: ")

	code, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return errors.Wrap(err, "read authorization code")
	}
	if err := manager.ExchangeAuthorizationCode(ctx, strings.TrimSpace(code)); err != nil {
		return err
	}

	if err := verifyIdentity(ctx, cfg, store, manager); err != nil {
		return err
	}

	fmt.Println("Setup complete.")
	return nil
}

// verifyIdentity checks the ID token issued during the exchange against
// the issuer before the identity is trusted for document naming.
func verifyIdentity(ctx context.Context, cfg config.OAuthConfig, store *credentials.Store, manager *token.Manager) error {
	ts := manager.Token()
	if ts == nil || ts.IDToken == "" {
		return nil
	}

	cred, err := store.Load()
	if err != nil {
		return err
	}
	provider, err := oidc.NewProvider(ctx, cfg.GetIssuerURL())
	if err != nil {
		return errors.Wrap(err, "discover OIDC issuer")
	}
	verifier := provider.Verifier(&oidc.Config{ClientID: cred.ClientID})
	idToken, err := verifier.Verify(ctx, ts.IDToken)
	if err != nil {
		return errors.Wrap(err, "verify id token")
	}

	var claims struct {
		Email string `json:"email"`
	}
	if err := idToken.Claims(&claims); err == nil && claims.Email != "" {
		fmt.Printf("Authenticated as %s.\n", claims.Email)
	}
	return nil
}

func status(ctx context.Context, cfg config.Config, manager *token.Manager) error {
	err := manager.Initialize(ctx)
	switch {
	case err == nil, apperrors.Is(err, apperrors.ErrRefreshFailed):
	case apperrors.Is(err, apperrors.ErrCredentialNotFound):
		fmt.Println("No OAuth client credential found, run setup.")
		return nil
	default:
		return err
	}

	switch manager.State() {
	case token.StateAuthenticated:
		fmt.Print("Authenticated")
		if operator := manager.OperatorIdentity(); operator != "" {
			fmt.Printf(" as %s", operator)
		}
		fmt.Println(".")
	case token.StateExpired:
		fmt.Println("Token expired, re-run setup.")
	default:
		fmt.Println("Not authenticated, run setup.")
	}
	fmt.Printf("Token file: %s\n", cfg.GetTokenPath())
	return nil
}

func reset(store *credentials.Store) error {
	if err := store.Clear(); err != nil {
		return err
	}
	fmt.Println("Stored token removed.")
	return nil
}

func testAuth(ctx context.Context, manager *token.Manager) error {
	if err := manager.Initialize(ctx); err != nil {
		return err
	}
	if _, err := manager.ValidCredential(ctx); err != nil {
		return err
	}
	fmt.Println("Credential is valid.")
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
