package submission

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDuplicateCheckerCachesPositiveAnswers(t *testing.T) {
	st := &memStore{waitlist: []Waitlist{{WaitlistFields: WaitlistFields{Email: "a@x.com"}}}}
	d := NewDuplicateChecker(st, 8)

	for i := 0; i < 3; i++ {
		state, err := d.Check(context.Background(), CategoryWaitlist, "a@x.com")
		require.NoError(t, err)
		assert.Equal(t, Duplicate, state)
	}
	assert.Equal(t, 1, st.lookups)
}

func TestDuplicateCheckerDoesNotCacheNegatives(t *testing.T) {
	st := &memStore{}
	d := NewDuplicateChecker(st, 8)

	for i := 0; i < 2; i++ {
		state, err := d.Check(context.Background(), CategoryWaitlist, "new@x.com")
		require.NoError(t, err)
		assert.Equal(t, NotDuplicate, state)
	}
	assert.Equal(t, 2, st.lookups)
}

func TestDuplicateCheckerScopesByCategory(t *testing.T) {
	st := &memStore{contacts: []Contact{{ContactFields: ContactFields{Email: "a@x.com"}}}}
	d := NewDuplicateChecker(st, 8)

	state, err := d.Check(context.Background(), CategoryWaitlist, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, NotDuplicate, state)

	state, err = d.Check(context.Background(), CategoryContact, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, Duplicate, state)
}

func TestDuplicateCheckerFailureIsDistinct(t *testing.T) {
	st := &memStore{existsErr: errStoreDown}
	d := NewDuplicateChecker(st, 8)

	state, err := d.Check(context.Background(), CategoryWaitlist, "a@x.com")
	assert.Equal(t, CheckFailed, state)

	var qe *QueryError
	require.True(t, errors.As(err, &qe))
	assert.Equal(t, CategoryWaitlist, qe.Category)
	assert.ErrorIs(t, err, errStoreDown)
}

func TestDuplicateCheckerRemember(t *testing.T) {
	st := &memStore{}
	d := NewDuplicateChecker(st, 8)
	d.Remember(CategoryWaitlist, "a@x.com")

	state, err := d.Check(context.Background(), CategoryWaitlist, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, Duplicate, state)
	assert.Zero(t, st.lookups)
}

func TestDuplicateStateString(t *testing.T) {
	assert.Equal(t, "duplicate", Duplicate.String())
	assert.Equal(t, "not_duplicate", NotDuplicate.String())
	assert.Equal(t, "check_failed", CheckFailed.String())
}
