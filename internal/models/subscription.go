package models

// SubscriptionKeys is the key pair identifying a push registration.
type SubscriptionKeys struct {
	P256DH string `json:"p256dh"`
	Auth   string `json:"auth"`
}

// Subscription is an active push registration. At most one exists per
// device; it is mirrored on the remote subscriber registry.
type Subscription struct {
	Endpoint string           `json:"endpoint"`
	Keys     SubscriptionKeys `json:"keys"`
}
