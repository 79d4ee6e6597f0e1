package fare

// VehicleClass identifies the vehicle size a customer books.
type VehicleClass string

const (
	Vehicle4Seats  VehicleClass = "4_seats"
	Vehicle7Seats  VehicleClass = "7_seats"
	Vehicle16Seats VehicleClass = "16_seats"
)

// Vehicle describes a bookable vehicle class.
type Vehicle struct {
	Class         VehicleClass `json:"class"`
	Name          string       `json:"name"`
	Description   string       `json:"description"`
	Multiplier    float64      `json:"price_multiplier"`
	MaxPassengers int          `json:"max_passengers"`
}

// Vehicles lists the classes in ascending size.
var Vehicles = []Vehicle{
	{Class: Vehicle4Seats, Name: "Xe 4 chỗ", Description: "Phù hợp cho 1-3 khách", Multiplier: 1.0, MaxPassengers: 4},
	{Class: Vehicle7Seats, Name: "Xe 7 chỗ", Description: "Phù hợp cho 4-6 khách", Multiplier: 1.2, MaxPassengers: 7},
	{Class: Vehicle16Seats, Name: "Xe 16 chỗ", Description: "Phù hợp cho 7-15 khách", Multiplier: 1.5, MaxPassengers: 16},
}

// LookupVehicle returns the vehicle for class.
func LookupVehicle(class VehicleClass) (Vehicle, bool) {
	for _, v := range Vehicles {
		if v.Class == class {
			return v, true
		}
	}
	return Vehicle{}, false
}

// MultiplierFor returns the price multiplier of class; unknown classes price as 4 seats.
func MultiplierFor(class VehicleClass) float64 {
	if v, ok := LookupVehicle(class); ok {
		return v.Multiplier
	}
	return 1.0
}

// ScaleFor applies the vehicle multiplier to cfg.
func ScaleFor(cfg Config, class VehicleClass) Config {
	m := MultiplierFor(class)
	if m == 1.0 || cfg == nil {
		return cfg
	}
	return cfg.Scale(m)
}
