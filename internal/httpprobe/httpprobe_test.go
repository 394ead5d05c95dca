package httpprobe

import "testing"

func TestParse_OkResponse(t *testing.T) {
	t.Parallel()

	lines := []string{
		"HTTP/1.1 200 OK",
		"Server: nginx/1.18.0",
		"Content-Type: text/html",
		"",
	}
	fp := parse(lines)
	if fp.Status != "ok" {
		t.Fatalf("status=%q, want ok", fp.Status)
	}
	if fp.StatusCode != 200 {
		t.Fatalf("status_code=%d, want 200", fp.StatusCode)
	}
	if fp.Server != "nginx/1.18.0" {
		t.Fatalf("server=%q", fp.Server)
	}
	if fp.Headers["Content-Type"] != "text/html" {
		t.Fatalf("headers=%v", fp.Headers)
	}
}

func TestParse_DefaultsServerToUnknown(t *testing.T) {
	t.Parallel()

	fp := parse([]string{"HTTP/1.1 404 Not Found"})
	if fp.Server != "Unknown" {
		t.Fatalf("server=%q, want Unknown", fp.Server)
	}
}

func TestParse_MalformedStatusLine(t *testing.T) {
	t.Parallel()

	fp := parse([]string{"garbage"})
	if fp.Status != "error" {
		t.Fatalf("status=%q, want error", fp.Status)
	}
}
