package common

// User-facing messages. The app ships in Indonesian; these are the exact
// strings the presenters show, so they live here rather than in each caller.
const (
	MsgOffline       = "Tidak dapat terhubung ke server. Periksa koneksi internet Anda."
	MsgQueuedForSync = "Anda sedang offline. Cerita disimpan dan akan dikirim saat online."
	MsgSyncDone      = "Cerita tertunda berhasil dikirim."
	MsgLoginRequired = "Anda harus login terlebih dahulu"
)

// HeaderOfflineFallback marks a response the caching transport fabricated
// locally because neither the network nor a cached copy could serve the
// request. Clients treat such a response as unavailability, never as a
// server answer.
const HeaderOfflineFallback = "X-Offline-Fallback"
