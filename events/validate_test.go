package events

import (
	"testing"
	"time"
)

func TestMetadataTimeoutMillis(t *testing.T) {
	// GetMetadata and request.timeout.ms both take milliseconds; a wrong
	// unit here turns a 10s probe into hours.
	if got := int(metadataTimeout.Milliseconds()); got != 10000 {
		t.Fatalf("metadata timeout = %d ms, want 10000", got)
	}
	if metadataTimeout != 10*time.Second {
		t.Fatalf("metadata timeout = %v, want 10s", metadataTimeout)
	}
}
