// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// LEDGER: Optional audit line signing and verification
package ledger

import (
	"bufio"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"strings"
)

// hmacFieldPrefix introduces the signature suffix on a signed audit line.
const hmacFieldPrefix = " | hmac="

// signLine computes the hex HMAC-SHA256 of one audit line (without its
// signature suffix).
func signLine(key []byte, line string) string {
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(line))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifyAuditLog checks every signed line in the audit log against the
// ledger's key and returns the number of lines verified. Unsigned lines
// (written before the key was configured) are counted but not an error;
// a line whose signature does not match is.
func (l *Ledger) VerifyAuditLog() (int, error) {
	if len(l.hmacKey) == 0 {
		return 0, fmt.Errorf("ledger: %s is not set", HMACKeyEnv)
	}

	f, err := os.Open(l.AuditPath())
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("ledger: open audit log: %w", err)
	}
	defer f.Close()

	count := 0
	lineNo := 0
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		idx := strings.LastIndex(line, hmacFieldPrefix)
		if idx < 0 {
			count++
			continue
		}
		body := line[:idx]
		sig := line[idx+len(hmacFieldPrefix):]
		if !hmac.Equal([]byte(sig), []byte(signLine(l.hmacKey, body))) {
			return count, fmt.Errorf("ledger: audit line %d failed HMAC verification", lineNo)
		}
		count++
	}
	if err := scanner.Err(); err != nil {
		return count, fmt.Errorf("ledger: read audit log: %w", err)
	}
	return count, nil
}
