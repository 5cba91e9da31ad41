package game

// ShipStats is one ship class's tuning. Armor reduces incoming damage
// by armor/1000; damage multiplies the weapon's base damage factor.
type ShipStats struct {
	Speed      float64
	Armor      float64
	Damage     float64
	FireRate   float64
	Health     float64
	WeaponType string
}

// WeaponStats is one weapon family's tuning. Damage is a multiplier
// applied on top of the ship's damage stat.
type WeaponStats struct {
	Name     string
	Color    string
	Speed    float64
	Size     float64
	Damage   float64
	Piercing bool
}

// EnemyStats is one enemy type's tuning. Aggression scales chase
// speed toward the player.
type EnemyStats struct {
	Speed      float64
	Health     float64
	Damage     float64
	Color      string
	Size       float64
	FireRate   float64
	Aggression float64
}

const (
	DefaultShipType  = "Interceptor"
	DefaultEnemyType = "Fighter"
)

// ShipTable maps ship class name to stats. Unknown names fall back to
// the Interceptor.
var ShipTable = map[string]ShipStats{
	"Interceptor": {Speed: 500, Armor: 80, Damage: 100, FireRate: 0.12, Health: 100, WeaponType: "laser"},
	"Fighter":     {Speed: 400, Armor: 120, Damage: 120, FireRate: 0.15, Health: 120, WeaponType: "plasma"},
	"Bomber":      {Speed: 300, Armor: 100, Damage: 200, FireRate: 0.25, Health: 100, WeaponType: "missile"},
	"Cruiser":     {Speed: 350, Armor: 180, Damage: 110, FireRate: 0.18, Health: 150, WeaponType: "laser"},
	"Stealth":     {Speed: 550, Armor: 60, Damage: 90, FireRate: 0.10, Health: 80, WeaponType: "plasma"},
	"Tank":        {Speed: 250, Armor: 250, Damage: 130, FireRate: 0.20, Health: 200, WeaponType: "cannon"},
}

// WeaponTable maps weapon family name to stats.
var WeaponTable = map[string]WeaponStats{
	"laser":   {Name: "Laser", Color: "#00ffff", Speed: 1200, Size: 8, Damage: 1},
	"plasma":  {Name: "Plasma", Color: "#00ff88", Speed: 1000, Size: 12, Damage: 1.2},
	"missile": {Name: "Missile", Color: "#ff8800", Speed: 800, Size: 15, Damage: 2},
	"cannon":  {Name: "Cannon", Color: "#ff0044", Speed: 900, Size: 14, Damage: 1.5, Piercing: true},
}

// EnemyTable maps enemy type name to stats.
var EnemyTable = map[string]EnemyStats{
	"Scout":   {Speed: 200, Health: 50, Damage: 10, Color: "#ff00ff", Size: 15, FireRate: 2, Aggression: 0.3},
	"Fighter": {Speed: 150, Health: 80, Damage: 15, Color: "#ff0088", Size: 18, FireRate: 1.5, Aggression: 0.5},
	"Heavy":   {Speed: 100, Health: 150, Damage: 25, Color: "#ff4400", Size: 25, FireRate: 3, Aggression: 0.7},
}

// asteroidColors is the random palette asteroids pick from at spawn.
var asteroidColors = []string{"#ff0044", "#ff4400", "#ff8800", "#ff0088", "#ff00ff"}

// ShipFor looks up a ship class with the Interceptor fallback.
func ShipFor(shipType string) ShipStats {
	if s, ok := ShipTable[shipType]; ok {
		return s
	}
	return ShipTable[DefaultShipType]
}

// WeaponFor looks up a ship class's weapon, laser when unknown.
func WeaponFor(shipType string) WeaponStats {
	if w, ok := WeaponTable[ShipFor(shipType).WeaponType]; ok {
		return w
	}
	return WeaponTable["laser"]
}

// EnemyFor looks up an enemy type with the Fighter fallback.
func EnemyFor(enemyType string) EnemyStats {
	if s, ok := EnemyTable[enemyType]; ok {
		return s
	}
	return EnemyTable[DefaultEnemyType]
}
