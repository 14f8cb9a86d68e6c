// Package domain models IMOS-AODN altimeter observations and their
// collocation onto a regular lat/lon grid.
//
// # Data Source
//
// Along-track altimeter records come from the IMOS-AODN "Surface Waves"
// multi-mission product (FV02, delayed mode). The fetch tool stages one
// netCDF file per 1°×1° tile per mission on disk:
//
//	<data dir>/<mission dir>/IMOS_SRS-Surface-Waves_MW_<mission>_FV02_<lat><N|S>-<lon>E-DM00.nc
//	e.g. JASON3/IMOS_SRS-Surface-Waves_MW_JASON-3_FV02_012S-241E-DM00.nc
//
// Latitudes are zero-padded absolute values with a hemisphere suffix (0 is
// "N"). Longitudes are zero-padded on the 0..360 axis and always carry "E".
// Tiles are sparse: most combinations simply do not exist for a mission.
//
// # AODN Conventions
//
// Time:
//
//	TIME is fractional days since 1985-01-01T00:00Z. The output uses seconds
//	since 1970-01-01, so the two differ by a fixed 473385600 seconds.
//
// Wave height families:
//
//	Missions report significant wave height (SWH) on the Ku band, except
//	SARAL which flies a Ka-band altimeter. Each family exposes the same six
//	variables with the band in the name: SWH_KU, SWH_KU_CAL,
//	SIG0_KU_std_dev, SWH_KU_num_obs, SWH_KU_std_dev, SWH_KU_quality_control.
//	SWH_C (C band), WSPD and WSPD_CAL are shared by every mission.
//
// Quality control:
//
//	A record is usable when its SWH std-dev is at most 1.5 m, backscatter
//	std-dev at most 0.8 dB, the SWH was averaged from enough 20 Hz samples
//	(mission-specific minimum), its QC flag is at most 2, and SWH and wind
//	are within (0.01, 20) m and (0.01, 60) m/s.
//
// # Collocation
//
// QC-passed records are binned on an hourly axis. For each hour, records
// within ±30 minutes are averaged onto the grid's water points with a
// triangular distance taper that reaches zero at the 25 km influence
// radius. See [HourlyAxis] and package collocate.
package domain
