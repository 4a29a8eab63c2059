package provider

import (
	"context"
	"testing"
)

// Mock implementation for testing.
type mockWeatherProvider struct {
	data      WeatherData
	metadata  ProviderInfo
	seedHint  int64
	flagHelp  []FlagHelp
	deriveErr error
}

func (m *mockWeatherProvider) Derive(_ context.Context, _ DeriveOptions) (WeatherData, error) {
	if m.deriveErr != nil {
		return WeatherData{}, m.deriveErr
	}
	return m.data, nil
}

func (m *mockWeatherProvider) GetMetadata() ProviderInfo {
	return m.metadata
}

func (m *mockWeatherProvider) SeedHint() int64 {
	return m.seedHint
}

func (m *mockWeatherProvider) GetFlagHelp() []FlagHelp {
	return m.flagHelp
}

// TestWeatherProviderRPC tests the weather provider RPC wrapper.
func TestWeatherProviderRPC(t *testing.T) {
	mock := &mockWeatherProvider{
		data: WeatherData{
			WeatherType: "sunny",
			Mood:        "energetic",
			SkyColor:    "#ffd700",
		},
		metadata: ProviderInfo{
			Name:            "test-provider",
			Type:            "weather",
			Version:         "1.0.0",
			ProtocolVersion: ProtocolVersion,
			Description:     "Test weather provider",
			PluginProtocol:  string(PluginTypeGoPlugin),
		},
		seedHint: 42,
		flagHelp: []FlagHelp{
			{Name: "test-flag", Type: "string", Default: "default", Description: "Test flag", Required: false},
		},
	}

	rpc := &WeatherProviderRPC{Impl: mock}

	t.Run("Server", func(t *testing.T) {
		server, err := rpc.Server(nil)
		if err != nil {
			t.Fatalf("Server() error = %v", err)
		}
		if server == nil {
			t.Fatal("Server() returned nil server")
		}

		rpcServer, ok := server.(*WeatherProviderRPCServer)
		if !ok {
			t.Fatal("Server() returned wrong type")
		}
		if rpcServer.Impl != mock {
			t.Fatal("Server() impl not set correctly")
		}
	})

	t.Run("Client", func(t *testing.T) {
		client, err := rpc.Client(nil, nil)
		if err != nil {
			t.Fatalf("Client() error = %v", err)
		}
		if client == nil {
			t.Fatal("Client() returned nil client")
		}
	})
}

// TestWeatherProviderRPCServer tests the RPC server methods.
func TestWeatherProviderRPCServer(t *testing.T) {
	mock := &mockWeatherProvider{
		data: WeatherData{
			WeatherType: "stormy",
			Mood:        "chaotic",
			IslandState: "burning",
		},
		metadata: ProviderInfo{
			Name:            "test",
			ProtocolVersion: ProtocolVersion,
		},
		seedHint: 12345,
		flagHelp: []FlagHelp{
			{Name: "flag1", Type: "string"},
		},
	}

	server := &WeatherProviderRPCServer{Impl: mock}

	t.Run("Derive", func(t *testing.T) {
		opts := DeriveOptions{Verbose: true}
		var resp []byte
		err := server.Derive(opts, &resp)
		if err != nil {
			t.Fatalf("Derive() error = %v", err)
		}
		if len(resp) == 0 {
			t.Fatal("Derive() returned empty response")
		}
	})

	t.Run("GetMetadata", func(t *testing.T) {
		var resp ProviderInfo
		err := server.GetMetadata(nil, &resp)
		if err != nil {
			t.Fatalf("GetMetadata() error = %v", err)
		}
		if resp.Name != "test" {
			t.Errorf("GetMetadata() name = %q, want %q", resp.Name, "test")
		}
	})

	t.Run("SeedHint", func(t *testing.T) {
		var resp int64
		err := server.SeedHint(nil, &resp)
		if err != nil {
			t.Fatalf("SeedHint() error = %v", err)
		}
		if resp != 12345 {
			t.Errorf("SeedHint() = %d, want %d", resp, 12345)
		}
	})

	t.Run("GetFlagHelp", func(t *testing.T) {
		var resp []FlagHelp
		err := server.GetFlagHelp(nil, &resp)
		if err != nil {
			t.Fatalf("GetFlagHelp() error = %v", err)
		}
		if len(resp) != 1 {
			t.Fatalf("GetFlagHelp() returned %d flags, want 1", len(resp))
		}
		if resp[0].Name != "flag1" {
			t.Errorf("GetFlagHelp()[0].Name = %q, want %q", resp[0].Name, "flag1")
		}
	})
}

// TestRPCError tests the RPCError type.
func TestRPCError(t *testing.T) {
	err := &RPCError{Message: "test error"}
	if err.Error() != "test error" {
		t.Errorf("RPCError.Error() = %q, want %q", err.Error(), "test error")
	}
}

// TestProviderInfo tests ProviderInfo structure.
func TestProviderInfo(t *testing.T) {
	info := ProviderInfo{
		Name:            "test-provider",
		Type:            "weather",
		Version:         "2.0.0",
		ProtocolVersion: "0.0.1",
		Description:     "A test provider",
		PluginProtocol:  "go-plugin",
	}

	if info.Name != "test-provider" {
		t.Errorf("Name = %q, want %q", info.Name, "test-provider")
	}
	if info.Type != "weather" {
		t.Errorf("Type = %q, want %q", info.Type, "weather")
	}
	if info.Version != "2.0.0" {
		t.Errorf("Version = %q, want %q", info.Version, "2.0.0")
	}
}

// TestFlagHelp tests FlagHelp structure.
func TestFlagHelp(t *testing.T) {
	flag := FlagHelp{
		Name:        "test-flag",
		Shorthand:   "t",
		Type:        "string",
		Default:     "default-value",
		Description: "Test flag description",
		Required:    true,
	}

	if flag.Name != "test-flag" {
		t.Errorf("Name = %q, want %q", flag.Name, "test-flag")
	}
	if flag.Shorthand != "t" {
		t.Errorf("Shorthand = %q, want %q", flag.Shorthand, "t")
	}
	if !flag.Required {
		t.Error("Required = false, want true")
	}
}
