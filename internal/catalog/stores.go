package catalog

import "store-locator-service/internal/domain"

var defaultStores = []domain.Store{
	{Name: "Fishtown", Slug: "fishtown", Address: "1428 Frankford Ave", City: "Philadelphia", State: "PA", Zip: "19125", Lat: 39.9737, Lng: -75.1287},
	{Name: "Northern Liberties", Slug: "northern-liberties", Address: "200 Spring Garden St", City: "Philadelphia", State: "PA", Zip: "19123", Lat: 39.9637, Lng: -75.1417},
	{Name: "Fairmount", Slug: "fairmount", Address: "2112 Fairmount Ave", City: "Philadelphia", State: "PA", Zip: "19130", Lat: 39.9687, Lng: -75.1727},
	{Name: "Old City", Slug: "old-city", Address: "45 N 3rd St", City: "Philadelphia", State: "PA", Zip: "19106", Lat: 39.9517, Lng: -75.1437},
	{Name: "East Market", Slug: "east-market", Address: "11 S 12th St", City: "Philadelphia", State: "PA", Zip: "19107", Lat: 39.9517, Lng: -75.1577},
	{Name: "Art Museum", Slug: "art-museum", Address: "1819 John F Kennedy Blvd", City: "Philadelphia", State: "PA", Zip: "19103", Lat: 39.9657, Lng: -75.1807},
	{Name: "Rittenhouse", Slug: "rittenhouse", Address: "2101 South St", City: "Philadelphia", State: "PA", Zip: "19146", Lat: 39.9417, Lng: -75.1757},
	{Name: "Passyunk", Slug: "passyunk", Address: "1701 E Passyunk Ave", City: "Philadelphia", State: "PA", Zip: "19148", Lat: 39.9257, Lng: -75.1577},
}
