package event

import (
	"encoding/json"
	"testing"
	"time"
)

// TestTypeConstants はイベント種類の定数値を検証する。
func TestTypeConstants(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		got  Type
		want string
	}{
		{
			name: "TypeUserSignedUpの値が正しいこと",
			got:  TypeUserSignedUp,
			want: "UserSignedUp",
		},
		{
			name: "TypeUserLoggedInの値が正しいこと",
			got:  TypeUserLoggedIn,
			want: "UserLoggedIn",
		},
		{
			name: "TypeFederatedUserProvisionedの値が正しいこと",
			got:  TypeFederatedUserProvisioned,
			want: "FederatedUserProvisioned",
		},
		{
			name: "TypePasswordUpdatedの値が正しいこと",
			got:  TypePasswordUpdated,
			want: "PasswordUpdated",
		},
		{
			name: "TypeProfileCompletedの値が正しいこと",
			got:  TypeProfileCompleted,
			want: "ProfileCompleted",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if string(tt.got) != tt.want {
				t.Errorf("Type = %q, want %q", tt.got, tt.want)
			}
		})
	}

	if string(AggregateTypeUser) != "User" {
		t.Errorf("AggregateTypeUser = %q, want %q", AggregateTypeUser, "User")
	}
}

// TestEventJSONSerialization はEvent構造体のJSONシリアライズ/デシリアライズを検証する。
func TestEventJSONSerialization(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC)
	original := Event{
		ID:            "test-id-123",
		AggregateID:   "user-456",
		AggregateType: AggregateTypeUser,
		EventType:     TypeUserSignedUp,
		Data:          json.RawMessage(`{"email":"a@x.com","nickname":"taro"}`),
		Version:       1,
		CreatedAt:     now,
	}

	t.Run("Event構造体をJSONにシリアライズできること", func(t *testing.T) {
		t.Parallel()

		jsonBytes, err := json.Marshal(original)
		if err != nil {
			t.Fatalf("json.Marshal()でエラーが発生: %v", err)
		}

		var decoded Event
		if err := json.Unmarshal(jsonBytes, &decoded); err != nil {
			t.Fatalf("json.Unmarshal()でエラーが発生: %v", err)
		}

		if decoded.ID != original.ID {
			t.Errorf("ID = %q, want %q", decoded.ID, original.ID)
		}
		if decoded.AggregateID != original.AggregateID {
			t.Errorf("AggregateID = %q, want %q", decoded.AggregateID, original.AggregateID)
		}
		if decoded.AggregateType != original.AggregateType {
			t.Errorf("AggregateType = %q, want %q", decoded.AggregateType, original.AggregateType)
		}
		if decoded.EventType != original.EventType {
			t.Errorf("EventType = %q, want %q", decoded.EventType, original.EventType)
		}
		if decoded.Version != original.Version {
			t.Errorf("Version = %d, want %d", decoded.Version, original.Version)
		}
		if !decoded.CreatedAt.Equal(original.CreatedAt) {
			t.Errorf("CreatedAt = %v, want %v", decoded.CreatedAt, original.CreatedAt)
		}
	})

	t.Run("EventのJSONフィールド名がスネークケースであること", func(t *testing.T) {
		t.Parallel()

		jsonBytes, err := json.Marshal(original)
		if err != nil {
			t.Fatalf("json.Marshal()でエラーが発生: %v", err)
		}

		var raw map[string]json.RawMessage
		if err := json.Unmarshal(jsonBytes, &raw); err != nil {
			t.Fatalf("json.Unmarshal()でエラーが発生: %v", err)
		}

		expectedKeys := []string{"id", "aggregate_id", "aggregate_type", "event_type", "data", "version", "created_at"}
		for _, key := range expectedKeys {
			if _, ok := raw[key]; !ok {
				t.Errorf("JSONに期待するキー %q が存在しない", key)
			}
		}
	})
}

// TestUserLoggedInDataJSON はUserLoggedInDataのJSONシリアライズを検証する。
func TestUserLoggedInDataJSON(t *testing.T) {
	t.Parallel()

	t.Run("OAuth2ログインのデータをシリアライズできること", func(t *testing.T) {
		t.Parallel()

		data := UserLoggedInData{Method: "oauth2", Provider: "google"}

		jsonBytes, err := json.Marshal(data)
		if err != nil {
			t.Fatalf("json.Marshal()でエラーが発生: %v", err)
		}

		var decoded UserLoggedInData
		if err := json.Unmarshal(jsonBytes, &decoded); err != nil {
			t.Fatalf("json.Unmarshal()でエラーが発生: %v", err)
		}

		if decoded.Method != "oauth2" {
			t.Errorf("Method = %q, want %q", decoded.Method, "oauth2")
		}
		if decoded.Provider != "google" {
			t.Errorf("Provider = %q, want %q", decoded.Provider, "google")
		}
	})

	t.Run("パスワードログインではproviderキーが省略されること", func(t *testing.T) {
		t.Parallel()

		data := UserLoggedInData{Method: "password"}

		jsonBytes, err := json.Marshal(data)
		if err != nil {
			t.Fatalf("json.Marshal()でエラーが発生: %v", err)
		}

		var raw map[string]json.RawMessage
		if err := json.Unmarshal(jsonBytes, &raw); err != nil {
			t.Fatalf("json.Unmarshal()でエラーが発生: %v", err)
		}
		if _, ok := raw["provider"]; ok {
			t.Error("providerキーは省略されるべき")
		}
	})
}
