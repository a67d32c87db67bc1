package brands

// Bundled artwork handles for the built-in brands. 0 is the generic
// placeholder.
const (
	LogoNone = iota
	LogoSkims
	LogoFenty
	LogoKylie
	LogoRhode
	LogoLululemon
	LogoGlow
	LogoMoon
	LogoSalt
	LogoStory
)

// Builtin is the static brand list shipped with the app, used when the
// remote directory is unreachable or doesn't know a name.
var Builtin = []Brand{
	{Name: "Skims", Category: "Most Popular", Enabled: true, LogoRes: LogoSkims},
	{Name: "Fenty Beauty", Category: "Most Popular", Enabled: true, LogoRes: LogoFenty},
	{Name: "Kylie Cosmetics", Category: "Most Popular", Enabled: true, LogoRes: LogoKylie},
	{Name: "Rhode", Category: "Most Popular", Enabled: true, LogoRes: LogoRhode},
	{Name: "Lululemon", Category: "Most Popular", Enabled: true, LogoRes: LogoLululemon},
	{Name: "Glow Beauty", Category: "Most Popular", Enabled: true, LogoRes: LogoGlow},
	{Name: "Moon Skincare", Category: "Most Popular", Enabled: true, LogoRes: LogoMoon},
	{Name: "Salt Cosmetics", Category: "Most Popular", Enabled: true, LogoRes: LogoSalt},
	{Name: "Story Hydration", Category: "Most Popular", Enabled: true, LogoRes: LogoStory},
}
