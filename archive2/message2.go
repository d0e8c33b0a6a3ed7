package archive2

// Message2 RDA Status Data (User 3.2.4.6)
type Message2 struct {
	RDAStatus                       uint16
	OperabilityStatus               uint16
	ControlStatus                   uint16
	AuxPowerGeneratorState          uint16
	AvgTxPower                      uint16
	HorizRefCalibCorr               int16
	DataTxEnabled                   uint16
	VolumeCoveragePatternNum        int16
	RDAControlAuth                  uint16
	RDABuild                        uint16
	OperationalMode                 uint16
	SuperResStatus                  uint16
	ClutterMitigationDecisionStatus uint16
	AvsetStatus                     uint16
	RDAAlarmSummary                 uint16
	CommandAck                      uint16
	ChannelControlStatus            uint16
	SpotBlankingStatus              uint16
	BypassMapGenDate                uint16
	BypassMapGenTime                uint16
	ClutterFilterMapGenDate         uint16
	ClutterFilterMapGenTime         uint16
	VertRefCalibCorr                int16
	TransitionPwrSourceStatus       uint16
	RMSControlStatus                uint16
	PerformanceCheckStatus          uint16
	AlarmCodes                      uint16
	Spares                          [20]byte
}

// MessageType is always 2
func (m *Message2) MessageType() uint8 { return 2 }

// GetBuildNumber returns the RDA build, eg 19.00. Builds before 10 were reported scaled by 10, later ones by 100.
func (m *Message2) GetBuildNumber() float32 {
	if m.RDABuild < 100 {
		return float32(m.RDABuild) / 10
	}
	return float32(m.RDABuild) / 100
}

// VolumeCoveragePattern in use; negative values mean the pattern was set locally
func (m *Message2) VolumeCoveragePattern() int {
	if m.VolumeCoveragePatternNum < 0 {
		return int(-m.VolumeCoveragePatternNum)
	}
	return int(m.VolumeCoveragePatternNum)
}

func decodeMessage2(c Cursor, recordOffset int64) (*Message2, error) {
	m2 := Message2{}
	if err := readAt(c, recordOffset+recordPrefixLength, &m2); err != nil {
		return nil, err
	}
	return &m2, nil
}
