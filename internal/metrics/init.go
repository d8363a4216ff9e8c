package metrics

// InitializeMetrics pre-populates all expected label combinations so that
// every metric is exported from the first Prometheus scrape.
// Call this once at startup after metric registration.
func InitializeMetrics() {
	directoryOps := []string{"list_photos", "get_photo", "create_photo", "delete_photo",
		"reorder_photos", "list_videos", "update_video", "fetch_bytes"}
	for _, op := range directoryOps {
		for _, status := range []string{"success", "error", "not_found", "decode_error"} {
			DirectoryRequestsTotal.WithLabelValues(op, status)
		}
		DirectoryRequestDuration.WithLabelValues(op)
	}

	for _, kind := range []string{"full", "thumbnail"} {
		for _, result := range []string{"memo", "resolved", "error"} {
			ResolveTotal.WithLabelValues(kind, result)
		}
	}

	for _, op := range []string{"load_listing", "save_listing", "delete_listing"} {
		StoreOperationsTotal.WithLabelValues(op, "success")
		StoreOperationsTotal.WithLabelValues(op, "error")
		StoreOperationDuration.WithLabelValues(op)
	}

	for _, state := range []string{"idle", "loading", "loaded", "failed"} {
		TileTransitionsTotal.WithLabelValues(state)
	}

	for _, action := range []string{"open", "next", "prev", "close"} {
		ViewerNavigationsTotal.WithLabelValues(action)
	}

	for _, status := range []string{"success", "error"} {
		DownloadsTotal.WithLabelValues(status)
	}

	for _, status := range []string{"success", "error"} {
		ThumbnailGenerationsTotal.WithLabelValues(status)
	}

	for _, op := range []string{"create_photo", "delete_photo", "reorder_photos",
		"update_video", "invalidate_cache", "warm_cache"} {
		AdminOperationsTotal.WithLabelValues(op, "success")
		AdminOperationsTotal.WithLabelValues(op, "error")
	}
}
