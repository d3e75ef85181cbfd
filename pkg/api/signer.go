package api

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// LocalSigner stashes result files in a local directory and hands out
// HMAC-signed, expiring download URLs. It stands in for an object store
// presigner in single-node deployments.
type LocalSigner struct {
	baseURL string
	dir     string
	ttl     time.Duration
	secret  []byte
}

// NewLocalSigner returns a signer writing to dir and prefixing URLs
// with baseURL. An empty secret gets a random one; links then stop
// verifying across restarts, which is fine for ephemeral downloads.
func NewLocalSigner(baseURL, dir string, ttl time.Duration, secret []byte) (*LocalSigner, error) {
	if len(secret) == 0 {
		secret = make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			return nil, err
		}
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &LocalSigner{baseURL: baseURL, dir: dir, ttl: ttl, secret: secret}, nil
}

// Sign copies the file into the results dir under the job id and
// returns a signed download URL.
func (l *LocalSigner) Sign(jobID, path string) (string, time.Time, error) {
	name := jobID + ".parquet"
	if err := copyFile(path, filepath.Join(l.dir, name)); err != nil {
		return "", time.Time{}, err
	}

	expires := time.Now().Add(l.ttl).UTC()
	url := fmt.Sprintf("%s/results/%s?expires=%d&sig=%s",
		l.baseURL, name, expires.Unix(), l.signature(name, expires))
	return url, expires, nil
}

// Verify checks a download request's signature and expiry.
func (l *LocalSigner) Verify(name string, expiresUnix int64, sig string) bool {
	expires := time.Unix(expiresUnix, 0)
	if time.Now().After(expires) {
		return false
	}
	return hmac.Equal([]byte(sig), []byte(l.signature(name, expires)))
}

// ServeHTTP serves a previously signed result file. Requests with a
// missing, forged or expired signature get a 403.
func (l *LocalSigner) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	name := filepath.Base(r.URL.Path)
	expires, err := strconv.ParseInt(r.URL.Query().Get("expires"), 10, 64)
	if err != nil || !l.Verify(name, expires, r.URL.Query().Get("sig")) {
		http.Error(w, "invalid or expired link", http.StatusForbidden)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.apache.parquet")
	http.ServeFile(w, r, filepath.Join(l.dir, name))
}

func (l *LocalSigner) signature(name string, expires time.Time) string {
	mac := hmac.New(sha256.New, l.secret)
	fmt.Fprintf(mac, "%s:%d", name, expires.Unix())
	return hex.EncodeToString(mac.Sum(nil))
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, in)
	return err
}
