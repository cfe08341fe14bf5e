package eventgen

import (
	"fmt"
	"math/rand/v2"

	"github.com/google/uuid"
)

// PresetProfile holds the device/network/geo attributes of a synthetic user.
// It is sampled once per user and stays immutable for the user's lifetime,
// unless a session explicitly enables profile rotation.
type PresetProfile struct {
	IP           string
	Country      string
	Province     string
	City         string
	OS           string
	OSVersion    string
	Model        string
	DeviceID     string
	Carrier      string
	NetworkType  string
	AppVersion   string
	Manufacturer string
	ScreenWidth  int
	ScreenHeight int
}

// DeviceBlueprint describes one device family the profile sampler can pick from.
type DeviceBlueprint struct {
	OS           string
	Manufacturer string
	Models       []string
	OSVersions   []string
	ScreenWidth  int
	ScreenHeight int
}

// GeoLocation is one ip/geo tuple of the sampling pool. Sampled IPs are drawn
// from within the /16 block named by IPPrefix so that ip and geo stay correlated.
type GeoLocation struct {
	Country  string
	Province string
	City     string
	IPPrefix string // first two octets, e.g. "203.12"
}

// ProfilePool is the sampling pool for preset profiles.
type ProfilePool struct {
	Devices      []DeviceBlueprint
	Carriers     []string
	NetworkTypes []string
	AppVersions  []string
	Locations    []GeoLocation
}

// DefaultProfilePool returns a small but serviceable pool for sessions that do
// not configure their own.
func DefaultProfilePool() ProfilePool {
	return ProfilePool{
		Devices: []DeviceBlueprint{
			{
				OS:           "iOS",
				Manufacturer: "Apple",
				Models:       []string{"iPhone 14", "iPhone 15", "iPhone 15 Pro"},
				OSVersions:   []string{"16.6", "17.2", "17.4"},
				ScreenWidth:  1179,
				ScreenHeight: 2556,
			},
			{
				OS:           "Android",
				Manufacturer: "Samsung",
				Models:       []string{"SM-G991B", "SM-S918B"},
				OSVersions:   []string{"13", "14"},
				ScreenWidth:  1080,
				ScreenHeight: 2340,
			},
			{
				OS:           "Android",
				Manufacturer: "Xiaomi",
				Models:       []string{"M2101K6G", "23021RAA2Y"},
				OSVersions:   []string{"12", "13"},
				ScreenWidth:  1080,
				ScreenHeight: 2400,
			},
		},
		Carriers:     []string{"Verizon", "T-Mobile", "Vodafone", "China Mobile"},
		NetworkTypes: []string{"WIFI", "4G", "5G"},
		AppVersions:  []string{"3.1.0", "3.2.0", "3.2.1"},
		Locations: []GeoLocation{
			{Country: "US", Province: "California", City: "San Francisco", IPPrefix: "52.8"},
			{Country: "US", Province: "New York", City: "New York", IPPrefix: "34.201"},
			{Country: "DE", Province: "Berlin", City: "Berlin", IPPrefix: "18.159"},
			{Country: "CN", Province: "Guangdong", City: "Shenzhen", IPPrefix: "42.186"},
		},
	}
}

// Validate ensures every pool dimension has at least one entry to sample from.
func (p ProfilePool) Validate() error {
	if len(p.Devices) == 0 || len(p.Carriers) == 0 || len(p.NetworkTypes) == 0 ||
		len(p.AppVersions) == 0 || len(p.Locations) == 0 {
		return ErrEmptyProfilePool
	}

	for _, device := range p.Devices {
		if len(device.Models) == 0 || len(device.OSVersions) == 0 {
			return ErrEmptyProfilePool
		}
	}

	return nil
}

// Sample draws one preset profile from the pool.
// Device IDs are fresh UUIDs, IPs are drawn from the sampled location's block.
func (p ProfilePool) Sample(r *rand.Rand) (PresetProfile, error) {
	if err := p.Validate(); err != nil {
		return PresetProfile{}, err
	}

	device := p.Devices[r.IntN(len(p.Devices))]
	location := p.Locations[r.IntN(len(p.Locations))]

	deviceID, err := uuid.NewV7()
	if err != nil {
		return PresetProfile{}, err
	}

	return PresetProfile{
		IP:           fmt.Sprintf("%s.%d.%d", location.IPPrefix, r.IntN(256), r.IntN(256)),
		Country:      location.Country,
		Province:     location.Province,
		City:         location.City,
		OS:           device.OS,
		OSVersion:    device.OSVersions[r.IntN(len(device.OSVersions))],
		Model:        device.Models[r.IntN(len(device.Models))],
		DeviceID:     deviceID.String(),
		Carrier:      p.Carriers[r.IntN(len(p.Carriers))],
		NetworkType:  p.NetworkTypes[r.IntN(len(p.NetworkTypes))],
		AppVersion:   p.AppVersions[r.IntN(len(p.AppVersions))],
		Manufacturer: device.Manufacturer,
		ScreenWidth:  device.ScreenWidth,
		ScreenHeight: device.ScreenHeight,
	}, nil
}
