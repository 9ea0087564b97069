package organizer_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"acordex/internal/domain"
	"acordex/internal/organizer"
	"acordex/internal/port"
	"acordex/mocks"
)

func residualInput() port.OrganizeInput {
	return port.OrganizeInput{
		Mode:   domain.OrganizeModeResidual,
		Fields: domain.NewRawFieldMap("Producer_FullName_A", "Acme Agency"),
	}
}

func organizedFixture() *domain.OrganizedResult {
	res := organizer.EmptyResult()
	res.Producer.Name = "Acme Agency"
	res.TokensUsed = domain.TokenUsage{Prompt: 100, Completion: 20, Total: 120}
	return res
}

func TestCached_MissCallsNextAndStores(t *testing.T) {
	next := new(mocks.MockOrganizer)
	cache := new(mocks.MockResultCache)
	input := residualInput()
	key := organizer.CacheKey("openai/gpt-4o-mini", input)

	cache.On("Get", mock.Anything, key).Return(nil, false, nil)
	next.On("Organize", mock.Anything, input).Return(organizedFixture(), nil)
	cache.On("Set", mock.Anything, key, mock.AnythingOfType("[]uint8")).Return(nil)

	c := organizer.NewCached(next, cache, "openai/gpt-4o-mini", zap.NewNop())
	res, err := c.Organize(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, "Acme Agency", res.Producer.Name)
	assert.Equal(t, 120, res.TokensUsed.Total)

	next.AssertExpectations(t)
	cache.AssertExpectations(t)
}

func TestCached_HitSkipsNextAndReportsNoTokens(t *testing.T) {
	next := new(mocks.MockOrganizer)
	cache := new(mocks.MockResultCache)
	input := residualInput()
	key := organizer.CacheKey("ns", input)

	payload, err := json.Marshal(organizedFixture())
	require.NoError(t, err)
	cache.On("Get", mock.Anything, key).Return(payload, true, nil)

	c := organizer.NewCached(next, cache, "ns", zap.NewNop())
	res, err := c.Organize(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, "Acme Agency", res.Producer.Name)
	assert.Equal(t, domain.TokenUsage{}, res.TokensUsed)
	next.AssertNotCalled(t, "Organize", mock.Anything, mock.Anything)
}

func TestCached_CacheFailuresDoNotFailTheCall(t *testing.T) {
	next := new(mocks.MockOrganizer)
	cache := new(mocks.MockResultCache)
	input := residualInput()

	cache.On("Get", mock.Anything, mock.Anything).Return(nil, false, errors.New("redis down"))
	cache.On("Set", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("redis down"))
	next.On("Organize", mock.Anything, input).Return(organizedFixture(), nil)

	c := organizer.NewCached(next, cache, "ns", zap.NewNop())
	res, err := c.Organize(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, "Acme Agency", res.Producer.Name)
}

func TestCached_ErrorsAreNotStored(t *testing.T) {
	next := new(mocks.MockOrganizer)
	cache := new(mocks.MockResultCache)
	input := residualInput()

	cache.On("Get", mock.Anything, mock.Anything).Return(nil, false, nil)
	next.On("Organize", mock.Anything, input).Return(nil, errors.New("boom"))

	c := organizer.NewCached(next, cache, "ns", zap.NewNop())
	_, err := c.Organize(context.Background(), input)
	assert.Error(t, err)
	cache.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything)
}

func TestCacheKey_DependsOnNamespaceAndInput(t *testing.T) {
	a := residualInput()
	b := residualInput()
	b.Fields = domain.NewRawFieldMap("Producer_FullName_A", "Other Agency")

	assert.Equal(t, organizer.CacheKey("ns", a), organizer.CacheKey("ns", a))
	assert.NotEqual(t, organizer.CacheKey("ns", a), organizer.CacheKey("ns", b))
	assert.NotEqual(t, organizer.CacheKey("ns", a), organizer.CacheKey("other", a))
}

func TestBreaker_OpensAfterRateLimit(t *testing.T) {
	next := new(mocks.MockOrganizer)
	input := residualInput()
	next.On("Organize", mock.Anything, input).
		Return(nil, organizer.NewRateLimitError("openai", errors.New("429"), 60)).Once()

	b := organizer.NewBreaker(next, "openai", zap.NewNop())

	_, err := b.Organize(context.Background(), input)
	var rlErr *organizer.RateLimitError
	require.ErrorAs(t, err, &rlErr)

	_, err = b.Organize(context.Background(), input)
	require.ErrorAs(t, err, &rlErr)
	assert.Contains(t, err.Error(), "circuit open")
	next.AssertNumberOfCalls(t, "Organize", 1)
}

func TestBreaker_PassesThroughOtherOutcomes(t *testing.T) {
	next := new(mocks.MockOrganizer)
	input := residualInput()
	next.On("Organize", mock.Anything, input).Return(nil, errors.New("bad gateway")).Once()
	next.On("Organize", mock.Anything, input).Return(organizedFixture(), nil).Once()

	b := organizer.NewBreaker(next, "openai", zap.NewNop())

	_, err := b.Organize(context.Background(), input)
	assert.EqualError(t, err, "bad gateway")

	res, err := b.Organize(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, "Acme Agency", res.Producer.Name)
}

func TestRateLimited_WaitHonorsDeadline(t *testing.T) {
	next := new(mocks.MockOrganizer)
	input := residualInput()
	next.On("Organize", mock.Anything, input).Return(organizedFixture(), nil)

	// one call every ten seconds
	r := organizer.NewRateLimited(next, 0.1)

	_, err := r.Organize(context.Background(), input)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = r.Organize(ctx, input)
	assert.Error(t, err)
	next.AssertNumberOfCalls(t, "Organize", 1)
}
