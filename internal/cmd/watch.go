package cmd

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/oakmart/storefront/internal/api"
	"github.com/oakmart/storefront/internal/app"
	"github.com/oakmart/storefront/internal/broadcast"
	"github.com/oakmart/storefront/internal/query"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run the live header: badge counts updating as the session and data change",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		var teardown app.Teardown
		defer teardown.Execute(context.Background())

		// session watcher: logins and logouts from other processes
		watcherDone := make(chan struct{})
		go func() {
			defer close(watcherDone)
			application.Start(ctx)
		}()
		teardown.Add("session watcher", func() error {
			stop()
			<-watcherDone
			return nil
		})

		// connectivity probe drives revalidate-on-reconnect
		go watchConnectivity(ctx, application.Config.API.BaseURL, application.Bus)

		cartBadge := application.WatchCartCount(ctx)
		teardown.AddClose("cart badge", cartBadge)

		noteBadge := application.WatchNotificationCount(ctx)
		teardown.AddClose("notification badge", noteBadge)

		fmt.Println("watching; ctrl-c to stop")
		for {
			select {
			case result := <-cartBadge.Updates():
				printBadge("cart", result, func(v any) int { return v.(api.CartCount).Count })
			case result := <-noteBadge.Updates():
				printBadge("unread", result, func(v any) int { return v.(api.NotificationCount).Count })
			case <-ctx.Done():
				return nil
			}
		}
	},
}

func printBadge(label string, result query.Result, count func(any) int) {
	switch {
	case result.Err != nil && result.Data == nil:
		fmt.Printf("%s: unavailable\n", label)
	case result.Data != nil:
		fmt.Printf("%s: %d\n", label, count(result.Data))
	}
}

// watchConnectivity probes the gateway and publishes a reconnect signal when
// connectivity returns after an outage, so stale subscriptions revalidate
// immediately instead of waiting out their polling interval.
func watchConnectivity(ctx context.Context, baseURL string, bus *broadcast.Bus) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return
	}
	host := u.Host
	if u.Port() == "" {
		if u.Scheme == "https" {
			host += ":443"
		} else {
			host += ":80"
		}
	}

	online := true
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		conn, err := net.DialTimeout("tcp", host, 2*time.Second)
		if err != nil {
			if online {
				log.Info().Str("host", host).Msg("connectivity lost")
			}
			online = false
			continue
		}
		conn.Close()

		if !online {
			log.Info().Str("host", host).Msg("connectivity restored")
			bus.Publish(broadcast.Reconnected)
		}
		online = true
	}
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
