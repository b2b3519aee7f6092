package service_test

import (
	"context"
	"regexp"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"promo-bot/internal/repository"
	"promo-bot/internal/service"
)

const botID = int64(7777)

func newChannelService(t *testing.T, api *fakeAPI) (*service.ChannelService, *repository.ChannelRepository) {
	t.Helper()
	repo := repository.NewChannelRepository(setupTestDB(t))
	return service.NewChannelService(repo, api, botID), repo
}

func TestParseChannelRef(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want service.ChannelRef
	}{
		{
			name: "id with link",
			args: []string{"-100123", "https://t.me/+abcd"},
			want: service.ChannelRef{ID: "-100123", InviteLink: "https://t.me/+abcd"},
		},
		{
			name: "public link",
			args: []string{"https://t.me/mychannel"},
			want: service.ChannelRef{Username: "mychannel", InviteLink: "https://t.me/mychannel"},
		},
		{
			name: "public link with query",
			args: []string{"t.me/mychannel?start=x"},
			want: service.ChannelRef{Username: "mychannel", InviteLink: "t.me/mychannel?start=x"},
		},
		{
			name: "private link",
			args: []string{"https://t.me/+abcd1234"},
			want: service.ChannelRef{InviteLink: "https://t.me/+abcd1234"},
		},
		{
			name: "legacy joinchat link",
			args: []string{"https://t.me/joinchat/abcd1234"},
			want: service.ChannelRef{InviteLink: "https://t.me/joinchat/abcd1234"},
		},
		{
			name: "at username",
			args: []string{"@mychannel"},
			want: service.ChannelRef{Username: "mychannel", InviteLink: "https://t.me/mychannel"},
		},
		{
			name: "bare id",
			args: []string{"-100123"},
			want: service.ChannelRef{ID: "-100123"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ref, err := service.ParseChannelRef(tt.args)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ref)
		})
	}
}

func TestChannelService_RegisterPublicUsername(t *testing.T) {
	api := newFakeAPI()
	api.chats["@mychannel"] = tgbotapi.Chat{ID: -100123, Type: "channel", Title: "My Channel", UserName: "mychannel"}
	api.setMember(-100123, botID, "administrator")
	svc, _ := newChannelService(t, api)

	ref, err := service.ParseChannelRef([]string{"https://t.me/mychannel"})
	require.NoError(t, err)

	result, err := svc.Register(context.Background(), ref)
	require.NoError(t, err)
	assert.False(t, result.Placeholder)
	assert.Equal(t, "-100123", result.Channel.ChannelID)
	assert.Equal(t, "My Channel", result.Channel.Title)
	assert.Equal(t, "https://t.me/mychannel", result.Channel.InviteLink)
	assert.Equal(t, service.AdminOK, result.Admin)
}

func TestChannelService_RegisterWarnsWithoutAdminRights(t *testing.T) {
	api := newFakeAPI()
	api.chats["@mychannel"] = tgbotapi.Chat{ID: -100123, Type: "channel", Title: "My Channel", UserName: "mychannel"}
	api.setMember(-100123, botID, "member")
	svc, _ := newChannelService(t, api)

	result, err := svc.Register(context.Background(), service.ChannelRef{Username: "mychannel"})
	require.NoError(t, err)
	assert.Equal(t, service.AdminMissing, result.Admin)
}

func TestChannelService_RegisterRejectsNonChannel(t *testing.T) {
	api := newFakeAPI()
	api.chats["@mygroup"] = tgbotapi.Chat{ID: -100123, Type: "supergroup", Title: "My Group"}
	svc, _ := newChannelService(t, api)

	_, err := svc.Register(context.Background(), service.ChannelRef{Username: "mygroup"})
	require.ErrorIs(t, err, service.ErrNotChannel)
}

func TestChannelService_RegisterPrivateLinkFallsBackToPlaceholder(t *testing.T) {
	api := newFakeAPI() // directory knows nothing
	svc, repo := newChannelService(t, api)

	ref, err := service.ParseChannelRef([]string{"https://t.me/+abcd1234"})
	require.NoError(t, err)

	result, err := svc.Register(context.Background(), ref)
	require.NoError(t, err)
	assert.True(t, result.Placeholder)
	assert.Regexp(t, regexp.MustCompile(`^private_\d+$`), result.Channel.ChannelID)
	assert.Equal(t, "https://t.me/+abcd1234", result.Channel.InviteLink)

	stored, err := repo.ListPlaceholders(context.Background())
	require.NoError(t, err)
	assert.Len(t, stored, 1)
}

func TestChannelService_RegisterUnresolvedWithoutPrivateLink(t *testing.T) {
	api := newFakeAPI()
	svc, _ := newChannelService(t, api)

	_, err := svc.Register(context.Background(), service.ChannelRef{Username: "ghost"})
	require.ErrorIs(t, err, service.ErrUnresolved)

	_, err = svc.Register(context.Background(), service.ChannelRef{ID: "-100404"})
	require.ErrorIs(t, err, service.ErrUnresolved)
}

func TestChannelService_RegisterDuplicate(t *testing.T) {
	api := newFakeAPI()
	api.chats["@mychannel"] = tgbotapi.Chat{ID: -100123, Type: "channel", Title: "My Channel", UserName: "mychannel"}
	api.setMember(-100123, botID, "administrator")
	svc, _ := newChannelService(t, api)
	ctx := context.Background()

	_, err := svc.Register(ctx, service.ChannelRef{Username: "mychannel"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, service.ChannelRef{Username: "mychannel"})
	require.ErrorIs(t, err, repository.ErrDuplicate)
}

func TestChannelService_RemoveResolvesUsername(t *testing.T) {
	api := newFakeAPI()
	api.chats["@mychannel"] = tgbotapi.Chat{ID: -100123, Type: "channel", Title: "My Channel", UserName: "mychannel"}
	api.setMember(-100123, botID, "administrator")
	svc, _ := newChannelService(t, api)
	ctx := context.Background()

	_, err := svc.Register(ctx, service.ChannelRef{Username: "mychannel"})
	require.NoError(t, err)

	removed, err := svc.Remove(ctx, "@mychannel")
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = svc.Remove(ctx, "-100123")
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestChannelService_ReconcileMatchesByExactTitle(t *testing.T) {
	api := newFakeAPI()
	svc, repo := newChannelService(t, api)
	ctx := context.Background()

	placeholder, err := svc.Register(ctx, service.ChannelRef{InviteLink: "https://t.me/+abcd"})
	require.NoError(t, err)
	require.True(t, placeholder.Placeholder)

	// Promotion in an unrelated channel changes nothing.
	reconciled, err := svc.Reconcile(ctx, tgbotapi.Chat{ID: -100555, Title: "Unrelated"})
	require.NoError(t, err)
	assert.Nil(t, reconciled)

	reconciled, err = svc.Reconcile(ctx, tgbotapi.Chat{ID: -100999, Title: placeholder.Channel.Title})
	require.NoError(t, err)
	require.NotNil(t, reconciled)
	assert.Equal(t, "-100999", reconciled.ChannelID)

	remaining, err := repo.ListPlaceholders(ctx)
	require.NoError(t, err)
	assert.Empty(t, remaining)
}
