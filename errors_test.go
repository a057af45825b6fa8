// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present Defense Unicorns

package yangcheck

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorKind(t *testing.T) {
	assert.Equal(t, "usage or load", KindUsageOrLoad.String())
	assert.Equal(t, "data read", KindDataRead.String())
	assert.Equal(t, "examine", KindExamine.String())
	assert.Equal(t, "unknown (-3)", ErrorKind(-3).String())
}

func TestKindOf(t *testing.T) {
	base := errors.New("boom")

	testCases := []struct {
		name     string
		err      error
		kind     ErrorKind
		ok       bool
		reported bool
	}{
		{name: "nil", err: nil},
		{name: "plain error", err: base},
		{name: "usage", err: UsageError(base), kind: KindUsageOrLoad, ok: true},
		{name: "reported", err: reported(KindDataRead, base), kind: KindDataRead, ok: true, reported: true},
		{name: "wrapped", err: fmt.Errorf("check: %w", reported(KindExamine, base)), kind: KindExamine, ok: true, reported: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			kind, ok := KindOf(tc.err)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.kind, kind)
			assert.Equal(t, tc.reported, IsReported(tc.err))
			if tc.ok {
				require.ErrorIs(t, tc.err, base)
				assert.Contains(t, tc.err.Error(), "boom")
			}
		})
	}
}
