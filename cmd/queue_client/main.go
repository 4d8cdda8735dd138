// Command queue_client drives one identity through the admission queue:
// join, poll on the server-suggested schedule, confirm the offered slot,
// then hold the session until its deadline or Ctrl-C.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"llm_queue/client"
)

func main() {
	var (
		server   = flag.String("server", "http://localhost:8080", "queue server base URL")
		userID   = flag.String("user", "", "queue identity; empty lets the server mint one")
		name     = flag.String("name", "", "account name to register once connected")
		email    = flag.String("email", "", "account email to register once connected")
		password = flag.String("password", "", "account password to register once connected")
	)
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := client.New(*server)
	p := client.NewPoller(c, *userID)
	p.OnDraft = func(s client.StatusInfo) {
		if s.DraftExpiresAt != nil {
			log.Printf("slot offered, confirming (window closes %s)", s.DraftExpiresAt.Format(time.RFC3339))
			return
		}
		log.Println("slot offered, confirming")
	}
	p.OnConnected = func(s client.Session) {
		log.Printf("connected for %ds, session ends %s", s.SessionDuration, s.SessionExpiresAt.Format(time.RFC3339))
	}
	p.OnEvicted = func(err error) {
		log.Printf("dropped from the queue: %v", err)
	}

	sess, err := p.Run(ctx)
	if err != nil {
		log.Fatalf("queue: %v", err)
	}

	// Registration only works while the session token is live.
	var accessToken string
	if *email != "" {
		if sess.Token == "" {
			log.Println("no session token recovered, skipping registration")
		} else if err := c.SignUp(ctx, sess.Token, client.SignUpRequest{
			Name:     *name,
			Email:    *email,
			Password: *password,
		}); err != nil {
			log.Printf("registration failed: %v", err)
		} else {
			log.Printf("registered %s", *email)
			pair, err := c.SignIn(ctx, *email, *password)
			if err != nil {
				log.Printf("sign-in failed: %v", err)
			} else {
				accessToken = pair.AccessToken
				log.Println("signed in")
			}
		}
	}

	timer := client.NewSessionTimer(sess.SessionExpiresAt)
	timer.Interval = 30 * time.Second
	timer.OnTick = func(remaining time.Duration) {
		log.Printf("session: %s remaining", remaining.Round(time.Second))
	}
	timer.OnExpire = func() {
		log.Println("session expired")
	}
	timer.Start()

	expired := make(chan struct{})
	go func() {
		timer.Wait()
		close(expired)
	}()

	select {
	case <-expired:
	case <-ctx.Done():
		timer.Stop()
		log.Println("interrupted")
	}

	// The signal context may already be done; cleanup gets its own.
	cleanupCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if accessToken != "" {
		if err := c.SignOut(cleanupCtx, accessToken); err != nil {
			log.Printf("signout failed: %v", err)
		}
	}
	// An expired session is already gone on the server side.
	if err := c.Leave(cleanupCtx, p.UserID()); err != nil && !errors.Is(err, client.ErrNotFound) {
		log.Printf("leave failed: %v", err)
	}
}
