package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/kopislukatan/storyapp/internal/common"
)

// Subscribe registers this device for push notifications.
func (a *App) Subscribe(ctx context.Context) error {
	if !a.isLoggedIn() {
		fmt.Fprintln(a.out, common.MsgLoginRequired)
		return common.ErrUnauthorized
	}
	if err := a.pushManager.Subscribe(ctx); err != nil {
		if errors.Is(err, common.ErrPermissionDenied) {
			fmt.Fprintln(a.out, "Notification permission was denied.")
			return err
		}
		a.report(ctx, err)
		return err
	}
	fmt.Fprintln(a.out, "Push notifications enabled.")
	return nil
}

// Unsubscribe withdraws the push registration.
func (a *App) Unsubscribe(ctx context.Context) error {
	if err := a.pushManager.Unsubscribe(ctx); err != nil {
		a.report(ctx, err)
		return err
	}
	fmt.Fprintln(a.out, "Push notifications disabled.")
	return nil
}
