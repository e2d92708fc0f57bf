package revalidate

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	stdhttp "net/http"
	"strings"

	perr "inkwell/internal/platform/errors"
	phttp "inkwell/internal/platform/net/http"
	"inkwell/internal/platform/net/http/bind"
)

const (
	headerSignature = "X-Hub-Signature-256"
	headerEvent     = "X-GitHub-Event"

	signaturePrefix = "sha256="
	maxBodyBytes    = 1 << 20
)

// Register mounts the webhook endpoint on the given router
func Register(r phttp.Router, s *Service) {
	r.Post("/revalidate", s.handle)
}

// handle reads the raw body itself: the signature covers the exact bytes on
// the wire, so decoding has to wait until verification passes
func (s *Service) handle(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		phttp.RespondError(w, r, perr.Wrapf(err, perr.ErrorCodeInvalidArgument, "read body failed"))
		return
	}

	if err := s.verify(body, r.Header.Get(headerSignature)); err != nil {
		phttp.RespondError(w, r, err)
		return
	}

	var p Payload
	if err := json.Unmarshal(body, &p); err != nil {
		phttp.RespondError(w, r, perr.JSONErrf("invalid webhook payload"))
		return
	}
	if err := bind.ValidateStruct(p); err != nil {
		phttp.RespondError(w, r, err)
		return
	}

	phttp.RespondOK(w, r, s.Process(r.Header.Get(headerEvent), p))
}

// verify checks the HMAC-SHA256 signature over the raw body. No configured
// secret means verification is skipped outside production; in production an
// unconfigured secret rejects everything rather than silently opening the
// endpoint
func (s *Service) verify(body []byte, header string) error {
	if s.opt.Secret == "" {
		if !s.opt.Production {
			return nil
		}
		s.log.Error().Msg("webhook secret not configured in production")
		return perr.Unauthorizedf("invalid signature")
	}

	if !strings.HasPrefix(header, signaturePrefix) {
		return perr.Unauthorizedf("invalid signature")
	}
	got, err := hex.DecodeString(strings.TrimPrefix(header, signaturePrefix))
	if err != nil {
		return perr.Unauthorizedf("invalid signature")
	}

	mac := hmac.New(sha256.New, []byte(s.opt.Secret))
	mac.Write(body)
	if !hmac.Equal(mac.Sum(nil), got) {
		return perr.Unauthorizedf("invalid signature")
	}
	return nil
}
