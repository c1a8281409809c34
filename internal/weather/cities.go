// Aerographus - Air Quality Analytics and AQI Inference
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aerographus

package weather

// trackedCity is one entry of the fixed city lists. Map cities carry
// pinned coordinates so rendering the map never depends on geocoding;
// the ranked lists geocode on demand through the long-TTL cache.
type trackedCity struct {
	Name    string
	Country string
	Lat     float64
	Lon     float64
}

// indianCities is the fixed ranked list of major Indian cities.
var indianCities = []trackedCity{
	{Name: "Delhi", Country: "IN"},
	{Name: "Mumbai", Country: "IN"},
	{Name: "Kolkata", Country: "IN"},
	{Name: "Chennai", Country: "IN"},
	{Name: "Bengaluru", Country: "IN"},
	{Name: "Hyderabad", Country: "IN"},
	{Name: "Ahmedabad", Country: "IN"},
	{Name: "Pune", Country: "IN"},
	{Name: "Jaipur", Country: "IN"},
	{Name: "Lucknow", Country: "IN"},
	{Name: "Kanpur", Country: "IN"},
	{Name: "Patna", Country: "IN"},
	{Name: "Varanasi", Country: "IN"},
	{Name: "Chandigarh", Country: "IN"},
	{Name: "Nagpur", Country: "IN"},
}

// worldCities is the fixed ranked list of world cities.
var worldCities = []trackedCity{
	{Name: "Beijing", Country: "CN"},
	{Name: "Shanghai", Country: "CN"},
	{Name: "Tokyo", Country: "JP"},
	{Name: "Seoul", Country: "KR"},
	{Name: "Bangkok", Country: "TH"},
	{Name: "Jakarta", Country: "ID"},
	{Name: "Dhaka", Country: "BD"},
	{Name: "Karachi", Country: "PK"},
	{Name: "Lahore", Country: "PK"},
	{Name: "Cairo", Country: "EG"},
	{Name: "London", Country: "GB"},
	{Name: "Paris", Country: "FR"},
	{Name: "New York", Country: "US"},
	{Name: "Los Angeles", Country: "US"},
	{Name: "Mexico City", Country: "MX"},
}

// mapCities is the fixed list plotted on the map view.
var mapCities = []trackedCity{
	{Name: "Delhi", Country: "IN", Lat: 28.6139, Lon: 77.2090},
	{Name: "Mumbai", Country: "IN", Lat: 19.0760, Lon: 72.8777},
	{Name: "Kolkata", Country: "IN", Lat: 22.5726, Lon: 88.3639},
	{Name: "Chennai", Country: "IN", Lat: 13.0827, Lon: 80.2707},
	{Name: "Bengaluru", Country: "IN", Lat: 12.9716, Lon: 77.5946},
	{Name: "Hyderabad", Country: "IN", Lat: 17.3850, Lon: 78.4867},
	{Name: "Ahmedabad", Country: "IN", Lat: 23.0225, Lon: 72.5714},
	{Name: "Pune", Country: "IN", Lat: 18.5204, Lon: 73.8567},
	{Name: "Jaipur", Country: "IN", Lat: 26.9124, Lon: 75.7873},
	{Name: "Lucknow", Country: "IN", Lat: 26.8467, Lon: 80.9462},
	{Name: "Patna", Country: "IN", Lat: 25.5941, Lon: 85.1376},
	{Name: "Varanasi", Country: "IN", Lat: 25.3176, Lon: 82.9739},
}
