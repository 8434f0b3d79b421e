package pppos

/*------------------------------------------------------------------
 *
 * Purpose:   	Link configuration file for the command line tools.
 *
 * Description: A small YAML document describing one link:
 *
 *		    device: /dev/ttyUSB0
 *		    baud: 115200
 *		    accomp: true
 *		    pcomp: true
 *		    vj:
 *		      enable: false
 *		      slot-compress: true
 *		      max-cid: 15
 *		    xmit-accm: 0x000a0000
 *		    recv-accm: 0x00000000
 *
 *		The accm words cover octets 0x00-0x1f, bit n for
 *		octet n, same as the LCP async-map option.
 *
 *---------------------------------------------------------------*/

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type vj_config_s struct {
	Enable       bool `yaml:"enable"`
	SlotCompress bool `yaml:"slot-compress"`
	MaxCID       int  `yaml:"max-cid"`
}

type link_config_s struct {
	Device   string      `yaml:"device"`
	Baud     int         `yaml:"baud"`
	Accomp   bool        `yaml:"accomp"`
	Pcomp    bool        `yaml:"pcomp"`
	VJ       vj_config_s `yaml:"vj"`
	XmitACCM uint32      `yaml:"xmit-accm"`
	RecvACCM uint32      `yaml:"recv-accm"`
}

/*-------------------------------------------------------------------
 *
 * Name:        config_load
 *
 * Purpose:     Read a link configuration file.
 *
 * Returns:	The configuration, or an error naming the file.
 *
 *--------------------------------------------------------------------*/

func config_load(path string) (*link_config_s, error) {
	var raw, err = os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}

	var cfg link_config_s
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return &cfg, nil
}

/*-------------------------------------------------------------------
 *
 * Name:        config_apply
 *
 * Purpose:     Push the negotiable parts of a configuration into a
 *		connected link.
 *
 *--------------------------------------------------------------------*/

func config_apply(pcb *pppos_pcb, cfg *link_config_s) {
	pppos_set_accomp(pcb, cfg.Accomp)
	pppos_set_pcomp(pcb, cfg.Pcomp)
	pppos_set_xmit_accm(pcb, cfg.XmitACCM)
	pppos_set_recv_accm(pcb, cfg.RecvACCM)
	pppos_vjc_config(pcb, cfg.VJ.Enable, cfg.VJ.SlotCompress, cfg.VJ.MaxCID)
}
