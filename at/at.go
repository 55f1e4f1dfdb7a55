package at

const (
	// Framing
	Prefix    = "AT"
	Separator = "+"
	QueryMark = "?"

	// Response codes
	OK        = "OK"
	GetPrefix = "OK+Get:"
	SetPrefix = "OK+Set:"

	// Unsolicited events
	TagInit          = "OK+INIT"
	TagEDRConnect    = "OK+CONE:"
	TagBLEConnect    = "OK+CONB:"
	TagEDRDisconnect = "OK+LSTE"
	TagBLEDisconnect = "OK+LSTB"

	// DisconnectNoticeLength is the length of the "OK+LSTx:<address>" notice
	// a bare AT probe produces when it tears down an open link.
	DisconnectNoticeLength = 20
)

// Command keywords. Keywords ending in E address the EDR link, keywords
// ending in B the BLE link; the remaining single-mode variants are used by
// modules without a dual-mode radio.
const (
	CmdReset           = "RESET"
	CmdFactoryDefaults = "RENEW"
	CmdVersion         = "VERR"
	CmdNotifyInfo      = "NOTI"
	CmdNotifyMode      = "NOTP"

	CmdEDRName        = "NAME"
	CmdBLEName        = "NAMB"
	CmdEDRAddress     = "ADDE"
	CmdBLEAddress     = "ADDB"
	CmdAddress        = "ADDR"
	CmdLastEDRAddress = "RADE"
	CmdLastBLEAddress = "RADB"
	CmdLastAddress    = "RADD"
	CmdClearEDRBond   = "BONDE"
	CmdClearBLEBond   = "BONDB"
	CmdClearEDRLast   = "CLEAE"
	CmdClearBLELast   = "CLEAB"
	CmdClearLast      = "CLEAR"
	CmdEDRRole        = "ROLE"
	CmdBLERole        = "ROLB"
	CmdEDRPin         = "PINE"
	CmdBLEPin         = "PINB"
	CmdPin            = "PASS"

	CmdHighSpeed        = "HIGH"
	CmdDualMode         = "DUAL"
	CmdWorkMode         = "MODE"
	CmdAtoB             = "ATOB"
	CmdAuthentication   = "AUTH"
	CmdClassOfDevice    = "COFD"
	CmdConnectionUpdate = "COUP"

	CmdIBeacon      = "IBEA"
	CmdIBeaconUUID  = "IBE"
	CmdIBeaconMajor = "MAJO"
	CmdIBeaconMinor = "MINO"
	CmdIBeaconPower = "MEAS"

	CmdMTUSize    = "MTUS"
	CmdAdvertType = "SCAN"
	CmdSafeMode   = "SAFE"
	CmdBLEMACOff  = "ONEM"
	CmdSystemKey  = "PIO0"
	CmdSystemLED  = "PIO1"
	CmdPIO        = "PIO"
	CmdBaud       = "BAUD"
)

// EventType classifies an unsolicited notice from the module.
type EventType int

const (
	EventNone          EventType = iota // Ordinary data, not a protocol event
	EventInit                           // Module restarted
	EventEDRConnect                     // EDR link established
	EventBLEConnect                     // BLE link established
	EventEDRDisconnect                  // EDR link lost
	EventBLEDisconnect                  // BLE link lost
)
